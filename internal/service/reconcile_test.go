package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-konvo/models"
)

func localMessage(localID, remoteID string, offset time.Duration, state models.DeliveryState) models.Message {
	return models.Message{
		LocalID:            localID,
		RemoteID:           remoteID,
		ConversationID:     testConversation,
		SenderID:           "id-1",
		Content:            "local " + localID,
		CreatedAt:          baseTime.Add(offset),
		EffectiveTimestamp: baseTime.Add(offset),
		DeliveryState:      state,
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		local  []models.Message
		remote []models.Message
		check  func(t *testing.T, got []models.Message)
	}{
		{
			name:   "empty inputs",
			local:  nil,
			remote: nil,
			check: func(t *testing.T, got []models.Message) {
				assert.Empty(t, got)
			},
		},
		{
			name:   "unknown remote entries inserted as received",
			remote: []models.Message{remoteMessage("r2", time.Minute, "m2"), remoteMessage("r1", 0, "m1")},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 2)
				assert.Equal(t, []string{"m1", "m2"}, contents(got))
				for _, m := range got {
					assert.Equal(t, models.DeliveryReceived, m.DeliveryState)
					assert.Equal(t, m.RemoteID, m.LocalID)
				}
			},
		},
		{
			name:   "known sent entry keeps local id and takes remote data",
			local:  []models.Message{localMessage("local-1", "r1", time.Hour, models.DeliverySent)},
			remote: []models.Message{remoteMessage("r1", 2*time.Hour, "edited")},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 1)
				assert.Equal(t, "local-1", got[0].LocalID)
				assert.Equal(t, "edited", got[0].Content)
				assert.Equal(t, baseTime.Add(2*time.Hour), got[0].EffectiveTimestamp)
				assert.Equal(t, models.DeliverySent, got[0].DeliveryState)
			},
		},
		{
			name:   "known received entry stays received",
			local:  []models.Message{remoteMessage("r1", 0, "m1")},
			remote: []models.Message{remoteMessage("r1", 0, "m1")},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 1)
				assert.Equal(t, models.DeliveryReceived, got[0].DeliveryState)
			},
		},
		{
			name: "pending and failed entries are retained",
			local: []models.Message{
				localMessage("local-1", "", time.Hour, models.DeliveryPending),
				localMessage("local-2", "", 2*time.Hour, models.DeliveryFailed),
			},
			remote: []models.Message{remoteMessage("r1", 0, "m1")},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 3)
				assert.Equal(t, "r1", got[0].RemoteID)
				assert.Equal(t, models.DeliveryPending, got[1].DeliveryState)
				assert.Equal(t, models.DeliveryFailed, got[2].DeliveryState)
			},
		},
		{
			name:   "confirmed entries missing remotely are kept",
			local:  []models.Message{localMessage("local-1", "r1", 0, models.DeliverySent)},
			remote: []models.Message{remoteMessage("r2", time.Minute, "m2")},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 2)
				assert.Equal(t, "local-1", got[0].LocalID)
				assert.Equal(t, "r2", got[1].RemoteID)
			},
		},
		{
			name: "duplicated remote ids are collapsed",
			local: []models.Message{
				localMessage("local-1", "r1", 0, models.DeliverySent),
				localMessage("local-2", "r1", 0, models.DeliverySent),
			},
			remote: []models.Message{remoteMessage("r1", 0, "m1"), remoteMessage("r1", 0, "m1")},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 1)
				assert.Equal(t, "local-1", got[0].LocalID)
			},
		},
		{
			name: "equal timestamps are ordered by local id",
			local: []models.Message{
				localMessage("local-b", "", 0, models.DeliveryPending),
				localMessage("local-a", "", 0, models.DeliveryPending),
			},
			check: func(t *testing.T, got []models.Message) {
				require.Len(t, got, 2)
				assert.Equal(t, "local-a", got[0].LocalID)
				assert.Equal(t, "local-b", got[1].LocalID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.local, tt.remote)
			tt.check(t, got)

			assert.Equal(t, got, Reconcile(got, tt.remote), "reconcile must be idempotent")
			for i := 1; i < len(got); i++ {
				assert.False(t, got[i].Before(got[i-1]), "result must be ordered")
			}
		})
	}
}

func TestReconcile_DoesNotModifyInputs(t *testing.T) {
	local := []models.Message{localMessage("local-1", "r1", time.Hour, models.DeliverySent)}
	remote := []models.Message{remoteMessage("r1", 0, "m1"), remoteMessage("r2", time.Minute, "m2")}
	localCopy := append([]models.Message(nil), local...)
	remoteCopy := append([]models.Message(nil), remote...)

	_ = Reconcile(local, remote)

	assert.Equal(t, localCopy, local)
	assert.Equal(t, remoteCopy, remote)
}
