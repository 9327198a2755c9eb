package rules

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLog writes events to a zap logger.
type ZapLog struct {
	logger *zap.Logger
	level  zapcore.Level
}

// NewZapLog logs events at debug level. A nil logger yields a no-op log.
func NewZapLog(logger *zap.Logger) *ZapLog {
	return NewZapLogAt(logger, zapcore.DebugLevel)
}

// NewZapLogAt logs events at the given level.
func NewZapLogAt(logger *zap.Logger, level zapcore.Level) *ZapLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLog{logger: logger, level: level}
}

// Record implements GameLog.
func (l *ZapLog) Record(event Event) {
	ce := l.logger.Check(l.level, "game event")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.String("player", event.PlayerID),
		zap.Int("round", event.Round),
	}
	switch event.Type {
	case EventCardPlayed:
		fields = append(fields,
			zap.String("card", event.Card.String()),
			zap.Stringer("counters", event.Counters),
		)
	case EventCardBoughtGained:
		fields = append(fields, zap.String("card", event.Card.String()))
	case EventDrawCards:
		fields = append(fields, zap.Int("count", event.Amount))
	case EventPhaseChanged:
		fields = append(fields, zap.Stringer("phase", event.Phase))
	}
	if event.Description != "" {
		fields = append(fields, zap.String("description", event.Description))
	}
	ce.Write(fields...)
}
