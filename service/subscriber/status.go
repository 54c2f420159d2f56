// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package subscriber

import (
	"fmt"
)

// Status is a representation of the subscriber's connection state.
type Status uint8

// The following is an enumeration of all possible statuses the subscriber
// can have.
const (
	StatusDisconnected Status = iota + 1
	StatusConnecting
	StatusSubscribed
	StatusRetrying
	StatusFailed
	StatusStopped
)

// String implements the Stringer interface.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusSubscribed:
		return "subscribed"
	case StatusRetrying:
		return "retrying"
	case StatusFailed:
		return "failed"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("invalid status %d", s)
	}
}

// Terminal returns whether the subscriber can no longer leave the status.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusStopped
}
