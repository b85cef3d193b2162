package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// WithParameterStore re-resolves s with the parameters stored under
// s.ParameterPath taking precedence over the environment. A parameter named
// "/portfolio-api/prod/MAX_SKILLS" overrides MAX_SKILLS.
// It returns s unchanged when no path is configured.
func WithParameterStore(ctx context.Context, client ssm.GetParametersByPathAPIClient, s Settings) (Settings, error) {
	p := strings.TrimSpace(s.ParameterPath)
	if p == "" {
		return s, nil
	}

	params, err := fetchParameters(ctx, client, p)
	if err != nil {
		return s, err
	}
	if len(params) == 0 {
		return s, nil
	}

	out := fromLookup(func(key string) string {
		if v, ok := params[key]; ok {
			return v
		}
		return os.Getenv(key)
	})
	// the path itself is only ever taken from the environment
	out.ParameterPath = s.ParameterPath
	return out, nil
}

func fetchParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, p string) (map[string]string, error) {
	out := map[string]string{}

	pager := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(p),
		Recursive:      aws.Bool(false),
		WithDecryption: aws.Bool(true),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssm get parameters by path %s: %w", p, err)
		}
		for _, prm := range page.Parameters {
			name := path.Base(aws.ToString(prm.Name))
			if name == "" || name == "." || name == "/" {
				continue
			}
			out[name] = aws.ToString(prm.Value)
		}
	}
	return out, nil
}
