package predict

import (
	"encoding/json"
	"fmt"
	"net/http"

	"samstream/internal/dispatcher"
	"samstream/internal/instance"
	"samstream/internal/knn"
	"samstream/internal/logging"
)

type Config struct {
	MaxBodyBytes int64 `envconfig:"PREDICT_MAX_BODY_BYTES" default:"65536"`
}

// The service is prequential: the caller provides the true label with the
// query, and the same instance should be posted to /collect afterwards.
type payload struct {
	Values []float64 `json:"values"`
	Class  int       `json:"class"`
}

type response struct {
	Votes []float64 `json:"votes"`
	Class int       `json:"class"`
}

func NewHandler(cfg *Config, predictor dispatcher.Predictor) (http.Handler, error) {
	if predictor == nil {
		return nil, fmt.Errorf("predictor instance is not created")
	}
	return &handler{cfg: cfg, predictor: predictor}, nil
}

type handler struct {
	cfg       *Config
	predictor dispatcher.Predictor
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in payload
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		http.Error(w, "unable to decode payload", http.StatusBadRequest)
		return
	}
	if len(in.Values) == 0 {
		http.Error(w, "no attribute values in payload", http.StatusBadRequest)
		return
	}

	votes, err := h.predictor.Predict(instance.New(in.Values, in.Class))
	if err != nil {
		logger.Errorf("predict: %v", err)
		http.Error(w, "unable to predict", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response{Votes: votes, Class: knn.MaxIndex(votes)}); err != nil {
		logger.Errorf("predict: unable to encode response: %v", err)
	}
}
