package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcdir/internal/domain"
	"svcdir/internal/service"
)

type recordingCreator struct {
	last service.CreateIdentityInput
}

func (r *recordingCreator) CreateIdentity(_ context.Context, input service.CreateIdentityInput) (service.CreatedIdentity, error) {
	r.last = input
	return service.CreatedIdentity{
		Identity: domain.Identity{ServiceNumber: domain.NormalizeServiceNumber(input.ServiceNumber), Username: input.Username},
		Passcode: "012345",
	}, nil
}

func TestRunCreate_Superuser(t *testing.T) {
	creator := &recordingCreator{}
	var out bytes.Buffer

	err := runCreate(context.Background(), &out, creator, []string{
		"-service-number", "n/1", "-username", "root", "-email", "root@x.io", "-passcode", "654321",
	}, true)
	require.NoError(t, err)

	assert.True(t, creator.last.IsSuperuser)
	assert.Equal(t, "654321", creator.last.Passcode)
	assert.Contains(t, out.String(), "passcode: 012345")
	assert.Contains(t, out.String(), "created N/1 (root)")
}

func TestParseCreateFlags(t *testing.T) {
	input, err := parseCreateFlags([]string{"-service-number", "S1", "-username", "u", "-email", "u@x.io", "-staff"}, false)
	require.NoError(t, err)
	assert.True(t, input.IsStaff)
	assert.False(t, input.IsSuperuser)

	_, err = parseCreateFlags([]string{"-staff"}, true)
	assert.Error(t, err, "superusers get staff implicitly; the flag is not offered")
}

type staticLister []domain.AdminIdentityView

func (s staticLister) ListWithPasscodes(context.Context) ([]domain.AdminIdentityView, error) {
	return s, nil
}

func TestRunList(t *testing.T) {
	var out bytes.Buffer
	err := runList(context.Background(), &out, staticLister{
		{Identity: domain.Identity{ServiceNumber: "N/1", Username: "ada", IsActive: true}, Passcode: "004217"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "PASSCODE")
	assert.Contains(t, lines[1], "004217")
	assert.Contains(t, lines[1], "N/1")
}
