// Code generated by "stringer -linecomment -type=ReceiveMode"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[RECEIVE_RECORD-0]
	_ = x[RECEIVE_BLOCK-1]
}

const _ReceiveMode_name = "recordblock"

var _ReceiveMode_index = [...]uint8{0, 6, 11}

func (i ReceiveMode) String() string {
	if i < 0 || i >= ReceiveMode(len(_ReceiveMode_index)-1) {
		return "ReceiveMode(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _ReceiveMode_name[_ReceiveMode_index[i]:_ReceiveMode_index[i+1]]
}
