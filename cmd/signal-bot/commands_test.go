package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/service"
	"golang-market-signal/pkg/line"
)

func TestIngestJobTypes(t *testing.T) {
	tests := []struct {
		source string
		want   []entity.JobType
	}{
		{"news", []entity.JobType{entity.JobTypeNewsIngestion}},
		{"SOCIAL", []entity.JobType{entity.JobTypeSocialIngestion}},
		{"all", []entity.JobType{entity.JobTypeNewsIngestion, entity.JobTypeSocialIngestion}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := ingestJobTypes(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ingestJobTypes("reddit")
	assert.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	_, err := newNotifier(config.Notifier{Channel: "telegram"})
	assert.ErrorIs(t, err, errNotifierNotConfigured)

	_, err = newNotifier(config.Notifier{Channel: "line", Line: config.Line{ChannelAccessToken: "token"}})
	assert.ErrorIs(t, err, errNotifierNotConfigured)

	n, err := newNotifier(config.Notifier{Channel: "line", Line: config.Line{BaseURL: "https://api.line.me", ChannelAccessToken: "token", To: "U123"}})
	require.NoError(t, err)
	assert.IsType(t, &line.Client{}, n)

	n, err = newNotifier(config.Notifier{Channel: "none"})
	require.NoError(t, err)
	assert.NoError(t, n.SendMessage("hello"))

	_, err = newNotifier(config.Notifier{Channel: "pager"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errNotifierNotConfigured)
}

type scriptedRunner struct {
	errs map[entity.JobType]error
	ran  []entity.JobType
}

func (r *scriptedRunner) Run(_ context.Context, jobType entity.JobType) error {
	r.ran = append(r.ran, jobType)
	return r.errs[jobType]
}

func TestRunJobs_ContinuesAfterFailure(t *testing.T) {
	newsErr := errors.New("failed to load watch list")
	runner := &scriptedRunner{errs: map[entity.JobType]error{
		entity.JobTypeNewsIngestion: newsErr,
	}}

	err := runJobs(context.Background(), runner, []entity.JobType{entity.JobTypeNewsIngestion, entity.JobTypeSocialIngestion})

	assert.ErrorIs(t, err, newsErr)
	assert.Equal(t, []entity.JobType{entity.JobTypeNewsIngestion, entity.JobTypeSocialIngestion}, runner.ran)
}

func TestRunJobs_JoinsErrorsAndIgnoresRunInProgress(t *testing.T) {
	socialErr := errors.New("social store down")
	runner := &scriptedRunner{errs: map[entity.JobType]error{
		entity.JobTypeNewsIngestion:   service.ErrRunInProgress,
		entity.JobTypeSocialIngestion: socialErr,
	}}

	err := runJobs(context.Background(), runner, []entity.JobType{entity.JobTypeNewsIngestion, entity.JobTypeSocialIngestion})

	assert.ErrorIs(t, err, socialErr)
	assert.NotErrorIs(t, err, service.ErrRunInProgress)

	runner.errs = map[entity.JobType]error{entity.JobTypeNewsIngestion: service.ErrRunInProgress}
	assert.NoError(t, runJobs(context.Background(), runner, []entity.JobType{entity.JobTypeNewsIngestion}))
}
