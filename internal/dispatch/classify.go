package dispatch

import (
	"regexp"
	"strings"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
)

// Classifier derives request-class hints from a RequestContext using the
// configurable host regexes and gaming port set.
type Classifier struct {
	videoHost   *regexp.Regexp
	aiHost      *regexp.Regexp
	largeBytes  int64
	gamingPorts map[int]struct{}
}

func NewClassifier(cfg config.ClassifyConfig) (*Classifier, error) {
	video, err := regexp.Compile(cfg.VideoHostRegex)
	if err != nil {
		return nil, err
	}
	ai, err := regexp.Compile(cfg.AIHostRegex)
	if err != nil {
		return nil, err
	}

	ports := make(map[int]struct{}, len(cfg.GamingPorts))
	for _, p := range cfg.GamingPorts {
		ports[p] = struct{}{}
	}

	return &Classifier{videoHost: video, aiHost: ai, largeBytes: cfg.LargePayloadBytes, gamingPorts: ports}, nil
}

// Classify inspects a request and returns the biases the Selector should
// apply when ranking candidates for it.
func (c *Classifier) Classify(req domain.RequestContext) domain.Classification {
	host := strings.ToLower(req.Host)

	cl := domain.Classification{
		IsVideo:        c.videoHost.MatchString(host),
		IsAI:           c.aiHost.MatchString(host),
		IsLargePayload: req.ContentLength >= c.largeBytes,
		IsTLS:          strings.EqualFold(req.Protocol, "https") || strings.EqualFold(req.Protocol, "tls"),
	}
	cl.IsHTTP = !cl.IsTLS
	if _, ok := c.gamingPorts[req.Port]; ok {
		cl.IsGaming = true
	}

	cl.PreferHighThroughput = cl.IsVideo || cl.IsLargePayload
	cl.PreferLowLatency = cl.IsGaming || cl.IsAI
	cl.PreferStability = cl.IsAI || cl.IsLargePayload

	return cl
}
