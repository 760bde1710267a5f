package specbleach

import "github.com/charmbracelet/log"

// Logger is the package-wide structured logger. Every processor shares it;
// swap it (e.g. in tests, or to silence output) before constructing handles.
// Logging happens at control-plane transitions: construction, parameter
// reloads, and estimator-method switches (the one parameter change that is
// not RT-safe, see ParameterBlock.NoiseEstimationMethod). The one call on
// the per-frame path is logProfileUnavailable, at Debug level, which the
// profile and 2D processors make for every frame reduced while the
// selected profile mode is unavailable.
var Logger = log.Default()

func logParamChange(field string, old, new any) {
	Logger.Debug("parameter reload", "field", field, "old", old, "new", new)
}

func logEstimatorSwitch(from, to EstimatorMethod) {
	Logger.Info("adaptive estimator switched, reseeding state", "from", from, "to", to)
}

func logProfileUnavailable(mode int) {
	Logger.Debug("reduce requested against unavailable profile, passing through", "mode", mode)
}

func logConstructionFailure(op string, err error) {
	Logger.Error("construction failed", "op", op, "err", err)
}
