package keyresolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// newBedrockSigner builds a SignFunc for the "bedrock" provider prefix,
// loading AWS credentials the standard way (env, shared config, IMDS) via
// aws-sdk-go-v2/config.LoadDefaultConfig. Grounded on the teacher's
// referenced-but-unretrieved bedrockSigner/isBedrockRequest hook points in
// internal/gateway/handler.go; this is the concrete implementation those
// hooks were missing.
func newBedrockSigner(region string) (SignFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("keyresolver: loading AWS config: %w", err)
	}

	signer := v4.NewSigner()

	return func(method, rawURL string, body []byte) (map[string]string, error) {
		creds, err := cfg.Credentials.Retrieve(ctx)
		if err != nil {
			return nil, fmt.Errorf("keyresolver: retrieving AWS credentials: %w", err)
		}

		req, err := http.NewRequest(method, rawURL, nil)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(body)
		payloadHash := hex.EncodeToString(sum[:])

		if err := signer.SignHTTP(ctx, creds, req, payloadHash, "bedrock", region, time.Now()); err != nil {
			return nil, fmt.Errorf("keyresolver: signing bedrock request: %w", err)
		}

		headers := make(map[string]string, len(req.Header))
		for k, v := range req.Header {
			headers[k] = strings.Join(v, ",")
		}
		return headers, nil
	}, nil
}
