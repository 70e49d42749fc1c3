package collect

import (
	"encoding/json"
	"fmt"
	"net/http"

	"samstream/internal/dispatcher"
	"samstream/internal/instance"
	"samstream/internal/logging"
)

type Config struct {
	MaxBodyBytes int64 `envconfig:"COLLECT_MAX_BODY_BYTES" default:"1048576"`
}

type instancePayload struct {
	Values []float64 `json:"values"`
	Class  int       `json:"class"`
}

type payload struct {
	Instances []instancePayload `json:"instances"`
}

type response struct {
	Accepted int `json:"accepted"`
}

// NewHandler accepts labeled instances and queues them for training.
func NewHandler(cfg *Config, collector dispatcher.Collector) (http.Handler, error) {
	if collector == nil {
		return nil, fmt.Errorf("collector instance is not created")
	}
	return &handler{cfg: cfg, collector: collector}, nil
}

type handler struct {
	cfg       *Config
	collector dispatcher.Collector
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
	if len(in.Instances) == 0 {
		http.Error(w, "no instances in payload", http.StatusBadRequest)
		return
	}

	instances := make([]*instance.Instance, 0, len(in.Instances))
	for i := range in.Instances {
		if len(in.Instances[i].Values) == 0 || in.Instances[i].Class < 0 {
			http.Error(w, "invalid instance in payload", http.StatusBadRequest)
			return
		}
		instances = append(instances, instance.New(in.Instances[i].Values, in.Instances[i].Class))
	}
	if err := h.collector.Collect(instances...); err != nil {
		logger.Errorf("collect: %v", err)
		http.Error(w, "unable to accept instances", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(response{Accepted: len(instances)}); err != nil {
		logger.Errorf("collect: unable to encode response: %v", err)
	}
}
