package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
)

func TestOnboarding_Next(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		withUpstream  bool
		upstreamErr   error
		addErr        error
		expectAdd     bool
		expectedStep  Step
		expectedErr   error
		expectReports int
	}{
		{
			name:         "blank URL stays on connect without a request",
			url:          "  ",
			expectedStep: StepConnect,
			expectedErr:  ErrEmptyRepoURL,
		},
		{
			name:         "backend accepts the repo",
			url:          "https://github.com/foo/bar",
			expectAdd:    true,
			expectedStep: StepLinked,
		},
		{
			name:         "upstream verified then added",
			url:          "https://github.com/foo/bar",
			withUpstream: true,
			expectAdd:    true,
			expectedStep: StepLinked,
		},
		{
			name:          "upstream rejects the repo",
			url:           "https://github.com/foo/bar",
			withUpstream:  true,
			upstreamErr:   gateway.ErrUpstreamNotFound,
			expectedStep:  StepConnect,
			expectedErr:   gateway.ErrUpstreamNotFound,
			expectReports: 1,
		},
		{
			name:          "unparsable URL with upstream check",
			url:           "https://github.com/foo",
			withUpstream:  true,
			expectedStep:  StepConnect,
			expectedErr:   domain.ErrInvalidRepoURL,
			expectReports: 1,
		},
		{
			name:          "backend rejects the repo",
			url:           "https://github.com/foo/bar",
			addErr:        &gateway.APIError{StatusCode: 400, Message: "Repository already connected"},
			expectAdd:     true,
			expectedStep:  StepConnect,
			expectReports: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tracker := new(mockTracker)
			if tc.expectAdd {
				if tc.addErr != nil {
					tracker.On("AddRepo", mock.Anything, tc.url).Return(nil, tc.addErr)
				} else {
					tracker.On("AddRepo", mock.Anything, tc.url).Return(&domain.Repo{ID: 1, Owner: "foo", Name: "bar"}, nil)
				}
			}
			var upstream gateway.Upstream
			var up *mockUpstream
			if tc.withUpstream {
				up = new(mockUpstream)
				if tc.upstreamErr != nil {
					up.On("VerifyRepository", mock.Anything, "foo", "bar").Return(nil, tc.upstreamErr)
				} else {
					up.On("VerifyRepository", mock.Anything, "foo", "bar").Return(&domain.UpstreamRepo{FullName: "foo/bar", Stars: 3}, nil).Maybe()
				}
				upstream = up
			}
			rep := &reportLog{}
			o := NewOnboarding(tracker, upstream, rep, nil)

			step, err := o.Next(context.Background())
			require.NoError(t, err)
			require.Equal(t, StepConnect, step)

			o.SetURL(tc.url)
			step, err = o.Next(context.Background())

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else if tc.addErr != nil {
				var apiErr *gateway.APIError
				assert.True(t, errors.As(err, &apiErr))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedStep, step)
			assert.Equal(t, tc.expectedStep, o.Step())
			assert.Len(t, rep.actions, tc.expectReports)
			assert.False(t, o.Connecting())
			if !tc.expectAdd {
				tracker.AssertNotCalled(t, "AddRepo", mock.Anything, mock.Anything)
			}
			tracker.AssertExpectations(t)
			if up != nil {
				up.AssertExpectations(t)
			}
		})
	}
}

func TestOnboarding_Completes(t *testing.T) {
	tracker := new(mockTracker)
	tracker.On("AddRepo", mock.Anything, "github.com/foo/bar").Return(&domain.Repo{ID: 4, Owner: "foo", Name: "bar"}, nil)
	o := NewOnboarding(tracker, nil, nil, nil)
	ctx := context.Background()

	_, err := o.Next(ctx)
	require.NoError(t, err)
	o.SetURL("github.com/foo/bar")
	step, err := o.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepLinked, step)

	repo, verified := o.Connected()
	assert.Equal(t, 4, repo.ID)
	assert.Nil(t, verified)

	step, err = o.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepDone, step)

	step, err = o.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepDone, step)
	assert.Equal(t, "done", step.String())
}
