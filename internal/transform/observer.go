package transform

import "log/slog"

// Stage names a normalizer pass.
type Stage string

const (
	StageRaw      Stage = "raw"
	StageTitle    Stage = "title"
	StageDedupe   Stage = "dedupe"
	StageComplete Stage = "complete"
	StageFinal    Stage = "final"
)

// Observer receives row counts after each pass and final coercion failures.
type Observer interface {
	StageDone(stage Stage, rows int)
	CoercionFailed(err error)
}

type nopObserver struct{}

func (nopObserver) StageDone(Stage, int) {}
func (nopObserver) CoercionFailed(error) {}

// LogObserver writes stage counts to a slog logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) StageDone(stage Stage, rows int) {
	o.logger().Info("etapa da limpeza concluída", "stage", stage, "rows", rows)
}

func (o LogObserver) CoercionFailed(err error) {
	o.logger().Error("falha na conversão final de tipos, mantendo valores limpos", "err", err)
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

type multiObserver []Observer

// Observers fans events out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multiObserver) StageDone(stage Stage, rows int) {
	for _, o := range m {
		o.StageDone(stage, rows)
	}
}

func (m multiObserver) CoercionFailed(err error) {
	for _, o := range m {
		o.CoercionFailed(err)
	}
}
