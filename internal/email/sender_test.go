package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/repository"
)

func testSender() *Sender {
	return NewSender(Config{
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "bot@example.com",
		Password:     "secret",
		From:         "bot@example.com",
		HRRecipients: []string{"hr@example.com", "payroll@example.com"},
	}, zap.NewNop())
}

func testEmployee() *repository.Employee {
	return &repository.Employee{
		ID:                 7,
		FullName:           "Abebe Bikila",
		Email:              "abebe.b@example.com",
		Position:           "Software Engineer",
		Department:         "Digital Health",
		SupervisorName:     "Almaz Ayana",
		SupervisorPosition: "Engineering Lead",
	}
}

func TestBuildBody(t *testing.T) {
	body := testSender().buildBody(testEmployee(), "ጥር / Tir 2017")

	assert.Contains(t, body, "Name: Abebe Bikila")
	assert.Contains(t, body, "Position: Software Engineer")
	assert.Contains(t, body, "Supervisor: Almaz Ayana")
	assert.Contains(t, body, "Timesheet Period: ጥር / Tir 2017")
	assert.Contains(t, body, "CC: abebe.b@example.com")
}

func TestBuildMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TIMESHEET_Abebe_2017_05.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook bytes"), 0644))

	msg, err := testSender().buildMessage("abebe.b@example.com", "MERQ Timesheet", "body text", path)
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "From: bot@example.com")
	assert.Contains(t, text, "To: hr@example.com, payroll@example.com")
	assert.Contains(t, text, "Cc: abebe.b@example.com")
	assert.Contains(t, text, "Subject: MERQ Timesheet")
	assert.Contains(t, text, "multipart/mixed")
	assert.Contains(t, text, `filename="TIMESHEET_Abebe_2017_05.xlsx"`)
	assert.Contains(t, text, "body text")
}

func TestBuildMessageMissingAttachment(t *testing.T) {
	_, err := testSender().buildMessage("x@example.com", "s", "b", "/nonexistent/file.xlsx")
	require.Error(t, err)
}
