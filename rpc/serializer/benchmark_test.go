package serializer

import (
	"strings"
	"testing"

	"github.com/3esharf1k/phone-book/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]any {
	return map[string]any{
		"Check": common.Message{Action: common.ActionCheck},
		"Search": common.Message{
			Action: common.ActionSearch,
			Field:  "surname",
			Value:  strPtr("Ivanov"),
		},
		"Add": common.Message{
			Action: common.ActionAdd,
			Values: map[string]string{
				"surname":    "Ivanov",
				"name":       "Ivan",
				"patronymic": "Ivanovich",
				"phone":      "+7 900 123 45 67",
				"note":       "colleague",
			},
		},
		"ShortResult": common.Response{Result: common.ResultAdded},
		"LargeResult": common.Response{
			Result: strings.Repeat("Ivanov Ivan Ivanovich +7 900 123 45 67 colleague\n", 500), // ~25KB listing
		},
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations with various message types
func BenchmarkSerialize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various message types
func BenchmarkDeserialize(b *testing.B) {
	messages := benchmarkMessages()
	serializedData := make(map[string]map[string][]byte)

	// Pre-serialize all messages with all serializers
	for name, factory := range testSerializers {
		serializer := factory()
		serializedData[name] = make(map[string][]byte)

		for msgName, msg := range messages {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("Failed to serialize %s with %s: %v", msgName, name, err)
			}
			serializedData[name][msgName] = data
		}
	}

	// Benchmark deserialization
	for name, factory := range testSerializers {
		for msgName := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				data := serializedData[name][msgName]
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var err error
					switch messages[msgName].(type) {
					case common.Response:
						var resp common.Response
						err = serializer.Deserialize(data, &resp)
					default:
						var msg common.Message
						err = serializer.Deserialize(data, &msg)
					}
					if err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize measures and reports the serialized size for each message type
func BenchmarkSize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				// Report the size as a custom metric
				b.ReportMetric(float64(len(data)), "bytes")

				// Minimal loop to satisfy benchmark requirements
				for i := 0; i < b.N; i++ {
					_ = data
				}
			})
		}
	}
}
