// Code generated by "stringer -linecomment -type=Status"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[STATUS_RUNNING-0]
	_ = x[STATUS_WAITING-1]
	_ = x[STATUS_HALTED-2]
}

const _Status_name = "runningwaitinghalted"

var _Status_index = [...]uint8{0, 7, 14, 20}

func (i Status) String() string {
	if i < 0 || i >= Status(len(_Status_index)-1) {
		return "Status(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _Status_name[_Status_index[i]:_Status_index[i+1]]
}
