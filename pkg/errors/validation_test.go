package errors

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username *string `validate:"required"`
	Email    string  `validate:"required,email"`
}

func TestFromValidator(t *testing.T) {
	v := validator.New()

	t.Run("names fields without internals", func(t *testing.T) {
		err := v.Struct(signupForm{Email: "not-an-email"})
		require.Error(t, err)

		vErr := FromValidator(err)
		assert.Equal(t, "Username is required, Email must be a valid email", vErr.Message)
		assert.NotContains(t, vErr.Message, "signupForm")
		assert.NotContains(t, vErr.Message, "Key:")
	})

	t.Run("empty value passes presence check", func(t *testing.T) {
		empty := ""
		assert.NoError(t, v.Struct(signupForm{Username: &empty, Email: "a@x.io"}))
	})

	t.Run("decode errors are generic", func(t *testing.T) {
		var out map[string]string
		err := json.Unmarshal([]byte("{not json"), &out)

		assert.Equal(t, MalformedRequestMessage, FromValidator(err).Message)
	})
}
