package board

import (
	"strconv"
	"strings"
	"unicode"

	serviceErrors "github.com/danilovkiri/dk_go_post_board/internal/service/errors"
)

const (
	MinUserID = 1
	MaxUserID = 10
)

// ParseUserID reads the leading integer of input, ignoring leading whitespace and any trailing text,
// and accepts it only within [MinUserID, MaxUserID].
func ParseUserID(input string) (int, error) {
	s := strings.TrimLeftFunc(input, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, &serviceErrors.InvalidUserIDError{Input: input}
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < MinUserID || n > MaxUserID {
		return 0, &serviceErrors.InvalidUserIDError{Input: input}
	}
	return n, nil
}
