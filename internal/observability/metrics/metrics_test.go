package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMustRegisterCurriesServiceLabel(t *testing.T) {
	MustRegister("authsvc-test")
	MustRegister("ignored")

	AuthLoginsTotal.WithLabelValues("success").Inc()
	TokensIssuedTotal.WithLabelValues("login", "success").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(AuthLoginsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(TokensIssuedTotal.WithLabelValues("login", "success")))
}
