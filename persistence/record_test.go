package persistence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-memory Store used only to exercise the
// interface's shape; it is not a collaborator implementation this module
// ships.
type memStore struct {
	mu   sync.Mutex
	recs map[[32]byte]*Record
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[[32]byte]*Record)}
}

func (m *memStore) PutChannel(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.ChannelID] = rec
	return nil
}

func (m *memStore) GetChannel(channelID [32]byte) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[channelID]
	if !ok {
		return nil, fmt.Errorf("no such channel")
	}
	return rec, nil
}

func (m *memStore) DeleteChannel(channelID [32]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, channelID)
	return nil
}

func (m *memStore) ListChannels(peerPubKey [33]byte) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for _, r := range m.recs {
		out = append(out, r)
	}
	return out, nil
}

func TestStoreRoundTrip(t *testing.T) {
	var store Store = newMemStore()

	rec := &Record{
		Version:   RecordVersionV1,
		ChannelID: [32]byte{1, 2, 3},
	}

	require.NoError(t, store.PutChannel(rec))

	got, err := store.GetChannel(rec.ChannelID)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	require.NoError(t, store.DeleteChannel(rec.ChannelID))
	_, err = store.GetChannel(rec.ChannelID)
	require.Error(t, err)
}

func TestListChannels(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.PutChannel(&Record{ChannelID: [32]byte{1}}))
	require.NoError(t, store.PutChannel(&Record{ChannelID: [32]byte{2}}))

	recs, err := store.ListChannels([33]byte{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
}
