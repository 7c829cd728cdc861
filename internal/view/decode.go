package view

import (
	"cinecity-client/internal/normalize"
)

// items returns the list inside raw, or typed when the service handed back a
// default without a payload.
func items[T any](raw []byte, typed []T, policy normalize.Policy, keys ...string) ([]T, error) {
	if len(raw) == 0 {
		if typed == nil {
			typed = []T{}
		}
		return typed, nil
	}
	return normalize.Decode[T](raw, policy, keys...)
}
