package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

// ControlClient is the synchronous request/response channel for
// session-mutating actions. Every call after Bootstrap carries the session
// token. Calls are never retried automatically; a failure surfaces to the
// caller and leaves no local trace.
type ControlClient struct {
	baseURL    string
	httpClient *http.Client

	token string
}

func NewControlClient(baseURL string) *ControlClient {
	return &ControlClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Token - the session token issued by Bootstrap; the push channel needs it
// too.
func (that *ControlClient) Token() string {
	return that.token
}

// Bootstrap - must be called once before any other operation. Failure is
// fatal to the session; there is no retry loop here.
func (that *ControlClient) Bootstrap(ctx context.Context, participantID, name string) (*protocol.BootstrapResponse, error) {
	req := protocol.BootstrapRequest{
		ParticipantID: participantID,
		Name:          name,
	}

	var resp protocol.BootstrapResponse
	if err := that.call(ctx, "/game/getStats", nil, req, &resp); err != nil {
		return nil, err
	}

	that.token = resp.AuthToken

	return &resp, nil
}

func (that *ControlClient) StartRoom(ctx context.Context, variant protocol.Variant, roomType string) (*protocol.Snapshot, error) {
	req := protocol.StartRoomRequest{
		Variant:  variant,
		RoomType: roomType,
	}

	var snapshot protocol.Snapshot
	if err := that.authedCall(ctx, "/game/start", nil, req, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (that *ControlClient) JoinRoom(ctx context.Context, roomID string) (*protocol.Snapshot, error) {
	query := url.Values{"gameId": {roomID}}

	var snapshot protocol.Snapshot
	if err := that.authedCall(ctx, "/game/connect", query, nil, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (that *ControlClient) SubmitMove(ctx context.Context, roomID string, cell protocol.Cell) (*protocol.Snapshot, error) {
	req := protocol.MoveRequest{
		RoomID: roomID,
		Cell:   cell,
	}

	var snapshot protocol.Snapshot
	if err := that.authedCall(ctx, "/game/gameplay", nil, req, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (that *ControlClient) ResetRoom(ctx context.Context, roomID string) (*protocol.Snapshot, error) {
	query := url.Values{"gameId": {roomID}}

	var snapshot protocol.Snapshot
	if err := that.authedCall(ctx, "/game/reset", query, nil, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (that *ControlClient) GetStatus(ctx context.Context, roomID string) (*protocol.Snapshot, error) {
	query := url.Values{"gameId": {roomID}}

	var snapshot protocol.Snapshot
	if err := that.authedCall(ctx, "/game/getStatus", query, nil, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (that *ControlClient) LeaveRoom(ctx context.Context) (*protocol.Snapshot, error) {
	var snapshot protocol.Snapshot
	if err := that.authedCall(ctx, "/game/leave", nil, nil, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (that *ControlClient) authedCall(ctx context.Context, path string, query url.Values, body, out any) error {
	if that.token == "" {
		return ErrNotBootstrapped
	}

	return that.call(ctx, path, query, body, out)
}

func (that *ControlClient) call(ctx context.Context, path string, query url.Values, body, out any) error {
	requestURL := that.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if that.token != "" {
		req.Header.Set("Authorization", "Bearer "+that.token)
	}

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("control call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrSessionExpired, path)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp protocol.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr != nil {
			errResp.Message = resp.Status
		}
		return &CallError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
