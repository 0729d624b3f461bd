package service

import (
	"slices"

	"github.com/MKhiriev/go-konvo/models"
)

// Reconcile merges a freshly fetched remote list into the local one.
//
// Local entries whose RemoteID appears remotely take the remote content and
// timestamps but keep their LocalID; they stay Received only if they were
// Received, otherwise they are Sent. Remote entries unknown locally are
// inserted as Received. Local entries without a RemoteID (pending or
// failed sends) and confirmed entries missing from the remote page are kept.
// The result is ordered by [models.Message.Before] and holds each RemoteID
// at most once.
//
// Reconcile does not modify its arguments and is idempotent:
// Reconcile(Reconcile(l, r), r) equals Reconcile(l, r).
func Reconcile(local, remote []models.Message) []models.Message {
	byRemoteID := make(map[string]models.Message, len(remote))
	for _, r := range remote {
		if r.RemoteID == "" {
			continue
		}
		if _, dup := byRemoteID[r.RemoteID]; !dup {
			byRemoteID[r.RemoteID] = r
		}
	}

	out := make([]models.Message, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local)+len(remote))

	for _, l := range local {
		if l.RemoteID == "" {
			out = append(out, l)
			continue
		}
		if _, dup := seen[l.RemoteID]; dup {
			continue
		}
		seen[l.RemoteID] = struct{}{}

		r, ok := byRemoteID[l.RemoteID]
		if !ok {
			out = append(out, l)
			continue
		}

		merged := r
		merged.LocalID = l.LocalID
		if merged.ConversationID == "" {
			merged.ConversationID = l.ConversationID
		}
		if merged.EffectiveTimestamp.IsZero() {
			merged.EffectiveTimestamp = l.EffectiveTimestamp
		}
		if l.DeliveryState == models.DeliveryReceived {
			merged.DeliveryState = models.DeliveryReceived
		} else {
			merged.DeliveryState = models.DeliverySent
		}
		out = append(out, merged)
	}

	for _, r := range remote {
		if r.RemoteID == "" {
			continue
		}
		if _, dup := seen[r.RemoteID]; dup {
			continue
		}
		seen[r.RemoteID] = struct{}{}

		if r.LocalID == "" {
			r.LocalID = r.RemoteID
		}
		if r.EffectiveTimestamp.IsZero() {
			r.EffectiveTimestamp = r.CreatedAt
		}
		r.DeliveryState = models.DeliveryReceived
		out = append(out, r)
	}

	sortMessages(out)
	return out
}

func sortMessages(messages []models.Message) {
	slices.SortStableFunc(messages, func(a, b models.Message) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})
}
