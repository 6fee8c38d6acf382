package cfg

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
)

func hookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		switch t {
		case reflect.TypeOf(ByteSize(0)):
			var b ByteSize
			if err := b.UnmarshalText([]byte(data.(string))); err != nil {
				return nil, err
			}
			return b, nil
		default:
			return data, nil
		}
	}
}

// DecodeHook composes the viper/mapstructure decode hooks this config
// relies on: text-unmarshalling for the custom scalar types (LogSeverity,
// LogFormat satisfy encoding.TextUnmarshaler directly), the byte-size
// hook above, and the standard duration/slice hooks.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		hookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
