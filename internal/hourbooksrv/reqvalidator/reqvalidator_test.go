package reqvalidator

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/pkg/api"
)

func TestCheck(t *testing.T) {
	h := 3.0
	assert.NoError(t, Check(&api.ManualAddReq{MemberCode: "12345", Hours: &h}))

	err := Check(&api.ManualAddReq{MemberCode: "1234"})
	require.Error(t, err)
	httpErr, ok := err.(*httpx.Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Description, "member_code must be a 5-digit member code")
	assert.Contains(t, httpErr.Description, "hours is required")

	neg := -1.0
	err = Check(&api.AdjustHoursReq{Hours: &neg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hours must be at least 0")

	err = Check(&api.KioskUnlockReq{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit_code is required")
}
