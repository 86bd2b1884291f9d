package audit

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/layertrack/internal/dyncall"
	"github.com/danielpatrickdp/layertrack/internal/instrument"
	"github.com/danielpatrickdp/layertrack/internal/logging"
)

// #region recorder

// Recorder adapts a Store to the instrument.Observer interface. Persistence
// failures are logged and swallowed: auditing must never break the
// instrumented program.
type Recorder struct {
	store *Store
}

// NewRecorder wraps a store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// ConstructionCompleted persists the captured configuration record.
func (r *Recorder) ConstructionCompleted(obj *instrument.Object) {
	payload, err := configJSON(obj.InitConfig().Map())
	if err != nil {
		logging.L().Warn("audit: serialize config", zap.String("class", obj.Class().Name), zap.Error(err))
		return
	}
	err = r.store.LogConstruction(ConstructionEntry{
		InstanceID: obj.ID(),
		ClassName:  obj.Class().Name,
		ConfigJSON: payload,
	})
	if err != nil {
		logging.L().Warn("audit: log construction", zap.Error(err))
	}
}

// PatchAdapted persists an adaptation event.
func (r *Recorder) PatchAdapted(class, method string, missing []string) {
	raw, err := json.Marshal(missing)
	if err != nil {
		logging.L().Warn("audit: serialize missing", zap.Error(err))
		return
	}
	err = r.store.LogAdaptation(AdaptationEntry{
		ClassName:   class,
		Method:      method,
		MissingJSON: string(raw),
	})
	if err != nil {
		logging.L().Warn("audit: log adaptation", zap.Error(err))
	}
}

// #endregion recorder

// #region config-json

// configJSON renders a configuration map through structpb so dynamic values
// share one canonical JSON form. Values structpb cannot represent are
// stringified rather than dropped.
func configJSON(m map[string]any) (string, error) {
	fields := make(map[string]*structpb.Value, len(m))
	for k, v := range m {
		fields[k] = pbValue(v)
	}
	raw, err := protojson.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(raw), nil
}

func pbValue(v any) *structpb.Value {
	if pv, err := structpb.NewValue(v); err == nil {
		return pv
	}
	switch t := v.(type) {
	case dyncall.Args:
		return pbValue([]any(t))
	case dyncall.Kwargs:
		return pbValue(map[string]any(t))
	case []any:
		items := make([]*structpb.Value, len(t))
		for i, item := range t {
			items[i] = pbValue(item)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: items})
	case map[string]any:
		fields := make(map[string]*structpb.Value, len(t))
		for k, item := range t {
			fields[k] = pbValue(item)
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields})
	default:
		return structpb.NewStringValue(fmt.Sprintf("%v", v))
	}
}

// #endregion config-json
