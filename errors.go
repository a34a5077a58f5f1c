// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrClosed is returned by Enqueue once the channel is closed, either
// explicitly or because its enqueue quota is exhausted.
//
// The buffer is never modified by a rejected Enqueue.
var ErrClosed = errors.New("chanq: enqueue on closed channel")

// ErrEmpty is returned by Dequeue and Peek when no item is buffered.
//
// An open-but-empty channel and a closed-and-empty channel fail identically;
// check Closed to tell them apart.
//
// ErrEmpty wraps [iox.ErrWouldBlock], so it is a control flow signal:
//
//	v, err := ch.Dequeue()
//	if chanq.IsWouldBlock(err) {
//	    // Nothing buffered - try again later
//	}
var ErrEmpty = fmt.Errorf("chanq: channel is empty: %w", iox.ErrWouldBlock)

// ErrInvalidConfiguration is returned when a channel is constructed with
// settings that cannot describe a usable channel, such as a zero quota.
var ErrInvalidConfiguration = errors.New("chanq: invalid configuration")

// ErrAlreadyFired is returned by OnClose when the close notification has
// already been delivered. Returning an error instead of silently dropping the
// subscriber guarantees observers never miss the close event.
var ErrAlreadyFired = errors.New("chanq: close notification already fired")

// IsWouldBlock reports whether err means nothing was buffered, which is
// true for ErrEmpty and anything wrapping it. ErrClosed and configuration
// errors are failures and report false.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...)
}
