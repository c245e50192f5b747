package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentNumberFormat(t *testing.T) {
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{6}$`, NewOrderNumber())
	assert.Regexp(t, `^QUO-\d{8}-[0-9A-F]{6}$`, NewQuotationNumber())
	assert.NotEqual(t, NewOrderNumber(), NewOrderNumber())
}
