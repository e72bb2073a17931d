package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridroom/gridroom-backend/internal/apperror"
	"github.com/gridroom/gridroom-backend/internal/entity"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
	"github.com/gridroom/gridroom-backend/testing/suite"
)

func TestParticipantRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	participantRepo := NewParticipantRepository(st.Redis)

	// Given: a participant with a seat in a room
	participant := &entity.Participant{
		ID:     "p1",
		Name:   "alice",
		Side:   protocol.SideFirst,
		RoomID: "ROOM01",
	}

	// When: CreateOrUpdate is called
	err := participantRepo.CreateOrUpdate(ctx, participant)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestParticipantRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		participantRepo := NewParticipantRepository(st.Redis)

		// Given: a stored participant
		participant := &entity.Participant{
			ID:     "p1",
			Name:   "alice",
			Side:   protocol.SideSecond,
			RoomID: "ROOM01",
		}
		require.NoError(t, participantRepo.CreateOrUpdate(ctx, participant))

		// When: GetByID is called with the existing ID
		retrieved, err := participantRepo.GetByID(ctx, participant.ID)

		// Then: the retrieved participant matches the saved one
		require.NoError(t, err)
		assert.Equal(t, participant.ID, retrieved.ID)
		assert.Equal(t, participant.Name, retrieved.Name)
		assert.Equal(t, participant.Side, retrieved.Side)
		assert.Equal(t, participant.RoomID, retrieved.RoomID)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		participantRepo := NewParticipantRepository(st.Redis)

		// When: GetByID is called with a non-existent ID
		_, err := participantRepo.GetByID(ctx, "missing")

		// Then: ErrParticipantNotFound should be returned
		assert.ErrorIs(t, err, apperror.ErrParticipantNotFound)
	})
}
