package scheduler

import (
	"os"
	"testing"

	"github.com/airtrack/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

func TestStartCronExpressions(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"five-field standard", "0 * * * *", false},
		{"six-field with seconds", "30 */5 * * * *", false},
		{"descriptor", "@hourly", false},
		{"garbage", "not a schedule", true},
		{"too few fields", "* *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			err := s.Start(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("Start(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if err == nil {
				s.Stop()
			}
		})
	}
}
