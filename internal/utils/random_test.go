package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

func TestGenerateRandomPasswordIsValid(t *testing.T) {
	for i := 0; i < 20; i++ {
		password := GenerateRandomPassword(4)
		assert.Len(t, password, 8)
		assert.NoError(t, ValidatePassword(password))
	}
}

func TestGenerateRandomUsernameIsValid(t *testing.T) {
	username := GenerateRandomUsername(domain.RoleVolunteer, "张伟")
	assert.True(t, strings.HasPrefix(username, "volunteer_z"))
	assert.NoError(t, ValidateUsername(username))

	for i := 0; i < 20; i++ {
		user, err := GenerateRandomUser(domain.RoleSupplier, "password123", "example.com")
		require.NoError(t, err)
		assert.NoError(t, ValidateUsername(user.Username))
		assert.Equal(t, user.Username+"@example.com", user.Email)
	}
}

func TestGenerateRandomWorkIsValid(t *testing.T) {
	month := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		work := GenerateRandomWork(1, month, calendar.DefaultAllowedHours)

		require.NoError(t, ValidateWorkHours(work, calendar.DefaultAllowedHours))
		require.NoError(t, ValidateWorkDates(work, month))
		assert.Equal(t, time.May, work.StartDate.Month())
		if work.Type == calendar.WorkTypeSession {
			assert.Equal(t, work.StartDate, work.EndDate)
		}
	}
}

func TestGenerateRandomSubset(t *testing.T) {
	arr := []int{1, 2, 3, 4, 5}
	for i := 0; i < 20; i++ {
		subset := GenerateRandomSubset(arr, 3)
		assert.NotEmpty(t, subset)
		assert.LessOrEqual(t, len(subset), 3)
		for _, v := range subset {
			assert.Contains(t, arr, v)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, arr)
}
