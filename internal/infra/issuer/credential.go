package issuer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/astro-web3/todo-service/internal/domain/authz"
	httpclient "github.com/astro-web3/todo-service/pkg/http"
	"github.com/astro-web3/todo-service/pkg/logger"
)

const pemContentType = "application/x-pem-file"

var ErrNoSource = errors.New("no signing certificate source configured")

// Source names where the signing certificate comes from. The first
// non-empty field wins in the order PEM, File, URL.
type Source struct {
	PEM  string
	File string
	URL  string
}

// LoadSigningCredential reads the issuer's certificate once. It is called at
// startup; the result is shared read-only by every request.
func LoadSigningCredential(ctx context.Context, src Source) (*authz.SigningCredential, error) {
	data, origin, err := readPEM(ctx, src)
	if err != nil {
		return nil, err
	}

	credential, err := authz.ParseSigningCredential(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing certificate from %s: %w", origin, err)
	}

	logger.InfoContext(ctx, "signing certificate loaded", slog.String("source", origin))
	return credential, nil
}

func readPEM(ctx context.Context, src Source) ([]byte, string, error) {
	switch {
	case strings.TrimSpace(src.PEM) != "":
		// Environment variables often carry the PEM with literal "\n".
		return []byte(strings.ReplaceAll(src.PEM, `\n`, "\n")), "inline", nil
	case src.File != "":
		data, err := os.ReadFile(src.File)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read signing certificate file: %w", err)
		}
		return data, "file", nil
	case src.URL != "":
		data, err := fetch(ctx, src.URL)
		if err != nil {
			return nil, "", err
		}
		return data, "url", nil
	default:
		return nil, "", ErrNoSource
	}
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := httpclient.Get(ctx, url, httpclient.WithAccept(pemContentType))
	if err != nil {
		return nil, fmt.Errorf("signing certificate request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("signing certificate request failed with status %d", resp.StatusCode())
	}

	return resp.Body(), nil
}
