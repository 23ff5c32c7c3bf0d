// Package storage provides interfaces for types to be in compliance with.
package storage

import (
	"context"
)

// Slot keys shared by every client. Values are plain strings.
const (
	LastUserIDKey = "lab_fetch_last_user_id"
	PostsDataKey  = "lab_fetch_posts_data"
)

// SlotGetter defines a set of methods for types implementing SlotGetter.
type SlotGetter interface {
	Read(ctx context.Context, clientID, key string) (value string, err error)
}

// SlotSetter defines a set of methods for types implementing SlotSetter.
//
// A ContextTimeoutExceededError from Write only means the caller stopped waiting: the write may still be
// committed afterwards, so a later Read can observe the new value.
type SlotSetter interface {
	Write(ctx context.Context, clientID, key, value string) error
}

// SlotDeleter defines a set of methods for types implementing SlotDeleter.
// As with Write, a Delete that reports ContextTimeoutExceededError may still take effect.
type SlotDeleter interface {
	Delete(ctx context.Context, clientID, key string) error
}

// Pinger defines a set of methods for types implementing Pinger.
type Pinger interface {
	PingDB() error
}

// Closer defines a set of methods for types implementing Closer.
type Closer interface {
	CloseDB() error
}

// SlotStorage defines a set of embedded interfaces for types implementing SlotStorage.
type SlotStorage interface {
	SlotGetter
	SlotSetter
	SlotDeleter
	Pinger
	Closer
}
