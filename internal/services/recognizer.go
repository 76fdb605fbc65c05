package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

const (
	baiduTokenURL = "https://aip.baidubce.com/oauth/2.0/token"
	baiduPlantURL = "https://aip.baidubce.com/rest/2.0/image-classify/v1/plant"
)

// Recognition is one provider answer: ranked predictions plus the provider's
// request id when it reports one.
type Recognition struct {
	Predictions []types.Prediction
	RequestID   *string
}

// Recognizer turns raw image bytes into ranked species predictions.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
	Healthy(ctx context.Context) bool
}

type BaiduConfig struct {
	APIKey    string
	SecretKey string
	TopNum    int
	Timeout   time.Duration
}

type baiduRecognizer struct {
	client *resty.Client
	log    *logger.Logger
	cfg    BaiduConfig

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewBaiduRecognizer(baseLog *logger.Logger, cfg BaiduConfig) Recognizer {
	if cfg.TopNum <= 0 {
		cfg.TopNum = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &baiduRecognizer{
		client: client,
		log:    baseLog.With("service", "BaiduRecognizer"),
		cfg:    cfg,
	}
}

type baiduTokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type baiduBaikeInfo struct {
	BaikeURL    string `json:"baike_url"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type baiduPlantResult struct {
	Name      string          `json:"name"`
	Score     float64         `json:"score"`
	BaikeInfo *baiduBaikeInfo `json:"baike_info"`
}

type baiduPlantResponse struct {
	LogID     int64              `json:"log_id"`
	Result    []baiduPlantResult `json:"result"`
	ErrorCode int                `json:"error_code"`
	ErrorMsg  string             `json:"error_msg"`
}

// token returns a cached OAuth access token, refreshing it a minute before
// the provider-reported expiry.
func (b *baiduRecognizer) token(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.accessToken != "" && time.Now().Before(b.tokenExpiry) {
		return b.accessToken, nil
	}

	var body baiduTokenResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     b.cfg.APIKey,
			"client_secret": b.cfg.SecretKey,
		}).
		SetResult(&body).
		Post(baiduTokenURL)
	if err != nil {
		return "", apierr.Dependency(fmt.Errorf("baidu token request: %w", err))
	}
	if resp.IsError() || body.Error != "" || body.AccessToken == "" {
		return "", apierr.Dependency(fmt.Errorf("baidu token rejected: %s %s", body.Error, body.ErrorDescription))
	}

	b.accessToken = body.AccessToken
	b.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)
	return b.accessToken, nil
}

func (b *baiduRecognizer) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	token, err := b.token(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var body baiduPlantResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", token).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"image":     base64.StdEncoding.EncodeToString(image),
			"baike_num": fmt.Sprintf("%d", b.cfg.TopNum),
		}).
		SetResult(&body).
		Post(baiduPlantURL)
	if err != nil {
		return nil, apierr.Dependency(fmt.Errorf("baidu plant request: %w", err))
	}
	if resp.IsError() {
		return nil, apierr.Dependency(fmt.Errorf("baidu plant request: status %d", resp.StatusCode()))
	}
	if body.ErrorCode != 0 {
		// Expired token gets one retry with a fresh one.
		if body.ErrorCode == 110 || body.ErrorCode == 111 {
			b.mu.Lock()
			b.accessToken = ""
			b.mu.Unlock()
		}
		return nil, apierr.Dependency(fmt.Errorf("baidu plant error %d: %s", body.ErrorCode, body.ErrorMsg))
	}

	predictions := make([]types.Prediction, 0, len(body.Result))
	for i, result := range body.Result {
		if i >= b.cfg.TopNum {
			break
		}
		p := types.Prediction{
			Rank:       i + 1,
			Name:       result.Name,
			Confidence: result.Score,
		}
		if result.BaikeInfo != nil {
			if result.BaikeInfo.BaikeURL != "" {
				p.BaikeURL = &result.BaikeInfo.BaikeURL
			}
			if result.BaikeInfo.Description != "" {
				p.Description = &result.BaikeInfo.Description
			}
		}
		predictions = append(predictions, p)
	}
	b.log.Info("Recognition completed",
		"log_id", body.LogID,
		"results", len(predictions),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	out := &Recognition{Predictions: predictions}
	if body.LogID != 0 {
		requestID := strconv.FormatInt(body.LogID, 10)
		out.RequestID = &requestID
	}
	return out, nil
}

// Healthy reports whether credentials are configured and a token can be
// obtained. It never fails a request path; callers use it for healthchecks.
func (b *baiduRecognizer) Healthy(ctx context.Context) bool {
	if b.cfg.APIKey == "" || b.cfg.SecretKey == "" {
		return false
	}
	_, err := b.token(ctx)
	return err == nil
}
