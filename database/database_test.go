package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestIsDuplicateKey(t *testing.T) {
	we := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

	assert.True(t, IsDuplicateKey(we))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", we)))
	assert.False(t, IsDuplicateKey(mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121}}}))
	assert.False(t, IsDuplicateKey(errors.New("connection reset")))
	assert.False(t, IsDuplicateKey(nil))
}

func TestParseID(t *testing.T) {
	_, err := parseID("not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)

	oid, err := parseID("65a1f0c2e4b0a1b2c3d4e5f6")
	assert.NoError(t, err)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", oid.Hex())
}
