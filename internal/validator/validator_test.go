package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type residentForm struct {
	FullName string  `json:"full_name" validate:"required,min=3"`
	Phone    *string `json:"phone" validate:"omitempty,br-phone"`
	Status   string  `json:"status" validate:"is-package-status"`
}

func TestValidate_CustomRulesAndJSONNames(t *testing.T) {
	v := New()
	bad := "12"
	err := v.Validate(&residentForm{FullName: "", Phone: &bad, Status: "lost"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "full_name")
	assert.Contains(t, vErr.Errors, "phone")
	assert.Contains(t, vErr.Errors, "status")
	assert.Equal(t, "This field is required", vErr.Errors["full_name"])
}

func TestValidate_OK(t *testing.T) {
	phone := "+55 (11) 99999-8888"
	assert.NoError(t, New().Validate(&residentForm{FullName: "Maria", Phone: &phone, Status: "picked_up"}))
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("+5511999998888"))
	assert.True(t, IsPhone("whatsapp:+5511999998888"))
	assert.True(t, IsPhone("11 99999-8888"))
	assert.False(t, IsPhone("abc"))
	assert.False(t, IsPhone("+55"))
}
