// Package model defines the data structures shared by the stores, services
// and HTTP handlers.
//
// The JSON tags are the persisted wire format: the browser build of the
// dashboard wrote these exact shapes to local storage, and the stores keep
// reading and writing them unchanged.
package model

// AuthUser is a registered account.
//
// Created on sign-up and never mutated or deleted afterwards. CreatedAt is
// kept as an RFC 3339 string rather than time.Time so records written by the
// browser build (JavaScript toISOString, millisecond precision) round-trip
// byte for byte.
type AuthUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"` // trimmed + lowercased, unique
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// AuthSession is the single active session slot.
// Every successful sign-up or sign-in overwrites it; logout removes it.
type AuthSession struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	LoggedInAt string `json:"loggedInAt"`
}
