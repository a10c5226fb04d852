package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/opensearch-project/opensearch-go/v2"
	requestsigner "github.com/opensearch-project/opensearch-go/v2/signer/awsv2"

	"legal-search/answer"
	"legal-search/bootstrap"
	appconfig "legal-search/config"
	"legal-search/logging"
	"legal-search/search"
	"legal-search/service/query"
)

type questionAnswerer interface {
	Handle(ctx context.Context, q answer.Query) (*answer.Answer, error)
}

type lambdaHandler struct {
	answerer    questionAnswerer
	defaultTopK int
	logger      *slog.Logger
}

func (l *lambdaHandler) handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = logging.WithRequestID(ctx, request.RequestContext.RequestID)
	l.logger.InfoContext(ctx, "Handler started", slog.String("method", request.HTTPMethod), slog.String("path", request.Path))

	switch {
	case request.Path == "/" && (request.HTTPMethod == http.MethodGet || request.HTTPMethod == http.MethodHead):
		return l.respond(ctx, http.StatusOK, query.RootBody)
	case request.Path == "/health" && request.HTTPMethod == http.MethodGet:
		return l.respond(ctx, http.StatusOK, query.HealthBody)
	case request.Path == "/query" && request.HTTPMethod == http.MethodPost:
		return l.query(ctx, request)
	default:
		return l.respond(ctx, http.StatusNotFound, query.ErrorBody{Detail: "Not Found"})
	}
}

func (l *lambdaHandler) query(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var payload query.RequestPayload
	if err := json.Unmarshal([]byte(request.Body), &payload); err != nil {
		l.logger.ErrorContext(ctx, "failed to parse request body", slog.Any("error", err))
		return l.respond(ctx, http.StatusUnprocessableEntity, query.ErrorBody{Detail: err.Error()})
	}
	if payload.Question == nil {
		return l.respond(ctx, http.StatusUnprocessableEntity, query.ErrorBody{Detail: "question is required"})
	}

	result, err := l.answerer.Handle(ctx, payload.ToQuery(l.defaultTopK))
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to answer question", slog.Any("error", err))
		return l.respond(ctx, http.StatusInternalServerError, query.ErrorBody{Detail: err.Error()})
	}

	return l.respond(ctx, http.StatusOK, result)
}

func (l *lambdaHandler) respond(ctx context.Context, status int, body any) (events.APIGatewayProxyResponse, error) {
	responseBytes, err := json.Marshal(body)
	if err != nil {
		l.logger.ErrorContext(ctx, "serialize response", slog.Any("error", err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"detail":"something went wrong building the response"}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(responseBytes),
	}, nil
}

func getSecret(ctx context.Context, smClient *secretsmanager.Client, id string) (string, error) {
	secret, err := smClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", id, err)
	}
	return aws.ToString(secret.SecretString), nil
}

func getOpensearchClient(awsCfg aws.Config, host string, username string, password string) (*opensearch.Client, error) {
	signer, err := requestsigner.NewSignerWithService(awsCfg, "es")
	if err != nil {
		return nil, fmt.Errorf("failed to create request signer: %w", err)
	}

	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return opensearch.NewClient(opensearch.Config{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
		},
		Addresses: []string{host},
		Username:  username,
		Password:  password,
		Signer:    signer,
	})
}

// loadStore reads the store credentials from Secrets Manager; everything else comes from the
// function environment.
func loadStore(ctx context.Context, awsCfg aws.Config, smClient *secretsmanager.Client, cfg *appconfig.Config, logger *slog.Logger) (bootstrap.Store, error) {
	if cfg.Store.Backend == appconfig.StoreOpenSearch {
		username, err := getSecret(ctx, smClient, "os-username")
		if err != nil {
			return nil, err
		}
		password, err := getSecret(ctx, smClient, "os-password")
		if err != nil {
			return nil, err
		}
		client, err := getOpensearchClient(awsCfg, cfg.Store.OpenSearchHost, username, password)
		if err != nil {
			return nil, err
		}
		return search.NewOpenSearchStore(client, cfg.Store.OpenSearchIndex), nil
	}

	if cfg.Store.WeaviateAPIKey == "" {
		apiKey, err := getSecret(ctx, smClient, "weaviate-api-key")
		if err != nil {
			logger.WarnContext(ctx, "connecting to weaviate without an api key", slog.Any("error", err))
		}
		cfg.Store.WeaviateAPIKey = apiKey
	}
	return bootstrap.NewStore(cfg.Store)
}

func main() {
	ctx := context.Background()
	cfg := appconfig.FromEnv()
	logger := logging.New(os.Stdout, cfg.App.LogLevel, "json")

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(err)
	}
	smClient := secretsmanager.NewFromConfig(awsCfg)

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey, err = getSecret(ctx, smClient, "openai-api-key")
		if err != nil {
			panic(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	store, err := loadStore(ctx, awsCfg, smClient, cfg, logger)
	if err != nil {
		panic(err)
	}

	// the cache connection lives as long as the execution environment
	orchestrator, _, err := bootstrap.NewOrchestrator(ctx, cfg, store, logger)
	if err != nil {
		panic(err)
	}

	handler := lambdaHandler{
		answerer:    orchestrator,
		defaultTopK: cfg.Retrieval.DefaultTopK,
		logger:      logger,
	}

	lambda.Start(handler.handler)
}
