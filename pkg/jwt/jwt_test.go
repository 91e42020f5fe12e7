package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issuer = "municipal-ops"

var bodeguero = Identity{UserID: "u-1", TenantID: "t-1", Role: "warehouse"}

func TestGenerateYParse(t *testing.T) {
	token, err := Generate("secreto", issuer, bodeguero, 5*time.Minute)
	require.NoError(t, err)

	id, err := Parse("secreto", issuer, token)
	require.NoError(t, err)
	assert.Equal(t, bodeguero, id)

	id, err = Parse("secreto", "", token)
	require.NoError(t, err, "sin emisor esperado no se valida iss")
	assert.Equal(t, "t-1", id.TenantID)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := Generate("secreto", issuer, bodeguero, 5*time.Minute)
	require.NoError(t, err)
	expired, err := Generate("secreto", issuer, bodeguero, -time.Minute)
	require.NoError(t, err)

	cases := map[string]struct {
		secret, issuer, token string
	}{
		"firma incorrecta": {"otro", issuer, token},
		"vencido":          {"secreto", issuer, expired},
		"otro emisor":      {"secreto", "otro-sistema", token},
		"malformado":       {"secreto", issuer, "a.b.c"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tc.secret, tc.issuer, tc.token)
			assert.Error(t, err)
		})
	}

	_, err = Parse("", issuer, token)
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = Generate("", issuer, bodeguero, time.Minute)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
