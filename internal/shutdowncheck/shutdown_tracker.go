// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package shutdowncheck

import (
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/log"
)

// updateInterval is how often the marker of the running instance is refreshed.
const updateInterval = 5 * time.Minute

// ShutdownTracker is a service that reports previous unclean shutdowns
// upon start. It needs to be started after a successful start-up and stopped
// after a successful shutdown, just before the journal is closed.
type ShutdownTracker struct {
	db     ethdb.KeyValueStore
	stopCh chan struct{}
}

// NewShutdownTracker creates a new ShutdownTracker instance and has
// no other side-effect.
func NewShutdownTracker(db ethdb.KeyValueStore) *ShutdownTracker {
	return &ShutdownTracker{
		db:     db,
		stopCh: make(chan struct{}),
	}
}

// MarkStartup pushes a new startup marker to the journal and reports the
// previous unclean shutdowns. Transactions received shortly before such a
// shutdown may be missing from the journal.
func (t *ShutdownTracker) MarkStartup() {
	uncleanShutdowns, discards, err := rawdb.PushUncleanShutdownMarker(t.db)
	if err != nil {
		log.Error("Could not update unclean-shutdown-marker list", "error", err)
		return
	}
	if discards > 0 {
		log.Warn("Old unclean shutdowns found", "count", discards)
	}
	for _, tstamp := range uncleanShutdowns {
		booted := time.Unix(int64(tstamp), 0)
		log.Warn("Unclean shutdown detected", "booted", booted,
			"age", common.PrettyDuration(time.Since(booted).Truncate(time.Second)))
	}
}

// Start runs an event loop that updates the current marker's timestamp every 5 minutes.
func (t *ShutdownTracker) Start() {
	go func() {
		ticker := time.NewTicker(updateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rawdb.UpdateUncleanShutdownMarker(t.db)
			case <-t.stopCh:
				return
			}
		}
	}()
}

// Stop will stop the update loop and clear the current marker.
func (t *ShutdownTracker) Stop() {
	// Stop update loop.
	t.stopCh <- struct{}{}
	// Clear last marker.
	rawdb.PopUncleanShutdownMarker(t.db)
}
