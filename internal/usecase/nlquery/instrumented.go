// Package nlquery wraps the phrase translator with metrics and logging.
package nlquery

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/domain/nlquery"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	"github.com/kailas-cloud/strindex/internal/metrics"
)

// ExplainFunc translates a phrase and reports the rules that fired.
type ExplainFunc func(phrase string) (predicate.Predicate, []string, error)

// InstrumentedTranslator counts translation outcomes and rule hits.
type InstrumentedTranslator struct {
	explain ExplainFunc
	logger  *zap.Logger
}

// NewInstrumentedTranslator wraps the rule-based translator.
func NewInstrumentedTranslator(logger *zap.Logger) *InstrumentedTranslator {
	return NewInstrumentedTranslatorWith(nlquery.Explain, logger)
}

// NewInstrumentedTranslatorWith wraps an arbitrary explain function.
func NewInstrumentedTranslatorWith(explain ExplainFunc, logger *zap.Logger) *InstrumentedTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedTranslator{explain: explain, logger: logger}
}

// Translate delegates to the wrapped translator and records the outcome.
func (t *InstrumentedTranslator) Translate(phrase string) (predicate.Predicate, error) {
	p, matched, err := t.explain(phrase)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("rejected").Inc()
		t.logger.Debug("Phrase rejected",
			zap.String("phrase", phrase),
			zap.Error(err),
		)
		return predicate.Predicate{}, err
	}

	metrics.TranslationsTotal.WithLabelValues("ok").Inc()
	for _, name := range matched {
		metrics.RuleMatchesTotal.WithLabelValues(name).Inc()
	}
	t.logger.Debug("Phrase translated",
		zap.String("phrase", phrase),
		zap.Strings("rules", matched),
	)
	return p, nil
}
