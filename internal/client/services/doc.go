// Package services contains application services of the catalog client.
//
// LocalCharacterService persists locally created characters in the
// key-value store (see repositories/metadata) as a JSON array under one key
// and allocates their ids from a counter kept under a second key.
package services
