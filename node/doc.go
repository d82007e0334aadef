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

/*
Package node hosts the RPC endpoints and the services of a signchecker instance.

A node is a collection of services which share the data directory and offer their RPC
APIs over HTTP and WebSocket. The transaction journal and the jwt secret live in the
instance directory.

# Node Lifecycle

The Node object has a lifecycle consisting of three basic states, INITIALIZING, RUNNING
and CLOSED.

	●───────┐
	     New()
	        │
	        ▼
	  INITIALIZING ────Start()─┐
	        │                  │
	        │                  ▼
	    Close()             RUNNING
	        │                  │
	        ▼                  │
	     CLOSED ◀──────Close()─┘

Creating a Node locks the instance directory and returns the node in its INITIALIZING
state. Lifecycle objects and RPC APIs can be registered in this state, and the journal
database can be opened.

Starting the node opens the RPC endpoints and then starts all registered Lifecycle
objects. Closing a RUNNING node stops the endpoints and the lifecycles in reverse order,
closes every database still open and releases the directory lock. You must always call
Close on Node, even if the node was not started.

# Endpoints

The HTTP and WebSocket servers are optional. When both use the same port a single
listener serves them, dispatching on the Upgrade header. Every endpoint can be restricted
to a subset of modules, limited to a request rate, and guarded by a jwt secret. The
"admin" and "debug" modules are only served when a jwt secret is configured.

# Data Directory Layout

	data-directory/
		signchecker/
			LOCK       -- instance lock
			jwtsecret  -- generated jwt secret, unless a path is configured
			journal/   -- pebble or leveldb transaction journal
			txdump/    -- raw transactions, one file each

Without a data directory the journal is kept in memory and nothing is locked.
*/
package node
