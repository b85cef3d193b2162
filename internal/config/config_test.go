package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"AWS_REGION", "DYNAMODB_TABLE_NAME", "PORT", "APP_ENV", "LOG_LEVEL",
		"MAX_NAME_LENGTH", "MAX_DESCRIPTION_LENGTH", "MAX_SKILLS", "MAX_SKILL_LENGTH",
		"RATE_LIMIT_RPS", "CONFIG_SSM_PATH", "EXPORT_PREFIX",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "Portfolios", cfg.DynamoDB.TableName)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DefaultLimits(), cfg.Limits)
	assert.Equal(t, 0, cfg.RateLimit.RPS)
	assert.Equal(t, DefaultExportPrefix, cfg.Export.Prefix)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("DYNAMODB_TABLE_NAME", "PortfoliosTest")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAX_NAME_LENGTH", "20")
	t.Setenv("MAX_SKILLS", "3")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "PortfoliosTest", cfg.DynamoDB.TableName)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20, cfg.Limits.MaxNameLength)
	assert.Equal(t, 3, cfg.Limits.MaxSkills)
	assert.Equal(t, DefaultMaxDescriptionLength, cfg.Limits.MaxDescriptionLength)
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "valid", value: "42", want: 42},
		{name: "empty uses default", value: "", want: 7},
		{name: "not a number uses default", value: "abc", want: 7},
		{name: "zero uses default", value: "0", want: 7},
		{name: "negative uses default", value: "-3", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(string) string { return tt.value }
			assert.Equal(t, tt.want, getEnvAsInt(lookup, "KEY", 7))
		})
	}
}

type fakeSSM struct {
	pages [][]ssmtypes.Parameter
	err   error
	calls int
}

func (f *fakeSSM) GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	f.calls++
	out := &ssm.GetParametersByPathOutput{Parameters: f.pages[i]}
	if i+1 < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestWithParameterStoreOverridesEnvironment(t *testing.T) {
	t.Setenv("DYNAMODB_TABLE_NAME", "FromEnv")
	t.Setenv("MAX_SKILLS", "")
	t.Setenv("CONFIG_SSM_PATH", "/portfolio-api/prod")

	cfg, err := Load()
	require.NoError(t, err)

	client := &fakeSSM{pages: [][]ssmtypes.Parameter{
		{{Name: aws.String("/portfolio-api/prod/DYNAMODB_TABLE_NAME"), Value: aws.String("FromSSM")}},
		{{Name: aws.String("/portfolio-api/prod/MAX_SKILLS"), Value: aws.String("5")}},
	}}

	out, err := WithParameterStore(context.Background(), client, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, "FromSSM", out.DynamoDB.TableName)
	assert.Equal(t, 5, out.Limits.MaxSkills)
	assert.Equal(t, "/portfolio-api/prod", out.ParameterPath)
}

func TestWithParameterStoreWithoutPath(t *testing.T) {
	cfg := Settings{DynamoDB: DynamoDBConfig{TableName: "X"}}
	client := &fakeSSM{err: errors.New("must not be called")}

	out, err := WithParameterStore(context.Background(), client, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, out)
	assert.Equal(t, 0, client.calls)
}

func TestWithParameterStoreError(t *testing.T) {
	cfg := Settings{ParameterPath: "/p"}
	_, err := WithParameterStore(context.Background(), &fakeSSM{err: errors.New("denied")}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
