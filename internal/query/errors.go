// internal/query/errors.go
package query

import (
	"errors"
	"fmt"
)

var (
	// ErrNilStream: stream 인자가 nil. 구독 전에 즉시 반환한다.
	ErrNilStream = errors.New("query: stream is nil")

	// ErrNegativeCount: count < 0.
	ErrNegativeCount = errors.New("query: count must not be negative")

	ErrCountMismatch = errors.New("query: incorrect number of items")
	ErrMissingTag    = errors.New("query: tag not found")
)

// CountMismatchError 는 deadline 까지 count 만큼 모이지 않았을 때 반환된다.
type CountMismatchError struct {
	Expected int
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("incorrect number of items. expected: %d received: %d", e.Expected, e.Actual)
}

func (e *CountMismatchError) Is(target error) bool {
	return target == ErrCountMismatch
}

// MissingTagError 는 tag prefix filter 평가 중 item 에 tag 가 없을 때 반환된다.
// 이 경우 query 는 즉시 중단된다.
type MissingTagError struct {
	Key  string
	Name string // 문제가 된 envelope 의 name
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("tag %q not found on %q", e.Key, e.Name)
}

func (e *MissingTagError) Is(target error) bool {
	return target == ErrMissingTag
}
