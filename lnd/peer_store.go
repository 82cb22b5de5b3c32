package lnd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/exp/slices"
)

const peersFileName = "peers.json"

type storedPeer struct {
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
}

// peerStore persists the peers that should be reconnected on start. lnd
// keeps its own persistent peers, but forgets them once the last channel
// with a peer is closed.
type peerStore struct {
	mu    sync.Mutex
	path  string
	peers []storedPeer
}

func loadPeerStore(dir string) (*peerStore, error) {
	s := &peerStore{path: filepath.Join(dir, peersFileName)}
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	if err := json.Unmarshal(b, &s.peers); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return s, nil
}

func (s *peerStore) list() []storedPeer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.peers)
}

func (s *peerStore) get(nodeID string) (storedPeer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.peers, func(p storedPeer) bool { return p.NodeID == nodeID })
	if i < 0 {
		return storedPeer{}, false
	}
	return s.peers[i], true
}

func (s *peerStore) add(p storedPeer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.peers, func(q storedPeer) bool { return q.NodeID == p.NodeID })
	if i >= 0 {
		if s.peers[i] == p {
			return nil
		}
		s.peers[i] = p
	} else {
		s.peers = append(s.peers, p)
	}
	return s.write()
}

func (s *peerStore) remove(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.peers)
	s.peers = slices.DeleteFunc(s.peers, func(p storedPeer) bool { return p.NodeID == nodeID })
	if len(s.peers) == n {
		return nil
	}
	return s.write()
}

func (s *peerStore) write() error {
	b, err := json.MarshalIndent(s.peers, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}
