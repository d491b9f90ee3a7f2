package cv

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const adapterSource = "python_adapter"

// ExecAdapter runs an operator-supplied inference program: the image is
// written to stdin and a single probability in [0,1] is read from stdout.
// A `.py` adapter is run through python3, anything else directly.
type ExecAdapter struct {
	path    string
	timeout time.Duration
}

// NewExecAdapter wraps the adapter at path.
func NewExecAdapter(path string, timeout time.Duration) *ExecAdapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExecAdapter{path: path, timeout: timeout}
}

// Predict invokes the adapter for one image. Any failure degrades this
// request's visual signal to unknown.
func (a *ExecAdapter) Predict(ctx context.Context, image []byte) Prediction {
	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var cmd *exec.Cmd
	if strings.HasSuffix(a.path, ".py") {
		cmd = exec.CommandContext(runCtx, "python3", a.path)
	} else {
		cmd = exec.CommandContext(runCtx, a.path)
	}
	cmd.Stdin = bytes.NewReader(image)

	out, err := cmd.Output()
	if err != nil {
		logrus.WithError(err).WithField("adapter", a.path).Debug("cv adapter invocation failed")
		return Prediction{Source: adapterSource, Note: "cv adapter invocation failed"}
	}

	prob, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return Prediction{Source: adapterSource, Note: "cv adapter returned a non-numeric result"}
	}
	prob = clampProbability(prob)

	return Prediction{
		Probability: prob,
		Known:       true,
		Label:       labelFor(prob),
		Source:      adapterSource,
	}
}

// Source identifies the variant.
func (a *ExecAdapter) Source() string { return adapterSource }

// Available reports true; the adapter was probed at startup.
func (a *ExecAdapter) Available() bool { return true }
