package httpapi

import (
	"io"
	"math"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/presensi-app/presensi/internal/presensi/types"
)

// maxRequestBody caps JSON and protobuf bodies on the non-upload routes. A
// sensor reading encodes to ~30 bytes in protobuf and ~90 bytes in JSON.
const maxRequestBody = 4096

const protobufContentType = "application/x-protobuf"

// SensorReading field numbers, shared with the sensor firmware:
//
//	message SensorReading {
//	  double temperature = 1;
//	  double humidity    = 2;
//	  int64  light       = 3;
//	  bool   motion      = 4;
//	}
//	message SensorAck { bool ok = 1; }
const (
	fieldTemperature protowire.Number = 1
	fieldHumidity    protowire.Number = 2
	fieldLight       protowire.Number = 3
	fieldMotion      protowire.Number = 4

	fieldAckOK protowire.Number = 1
)

var errWireType = errors.New("unexpected wire type")

// isProtobuf returns true if the request's Content-Type indicates a
// protobuf payload. Sensor nodes send "application/x-protobuf".
func isProtobuf(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == protobufContentType ||
		ct == "application/protobuf" ||
		ct == "application/octet-stream"
}

// readSensorProto reads the body as a SensorReading. Fields the firmware
// omits stay nil; unknown fields are skipped.
func readSensorProto(r *http.Request) (types.SensorReadingRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return types.SensorReadingRequest{}, err
	}
	return decodeSensorReading(body)
}

func decodeSensorReading(b []byte) (types.SensorReadingRequest, error) {
	var req types.SensorReadingRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return req, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case (num == fieldTemperature || num == fieldHumidity) && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return req, protowire.ParseError(n)
			}
			b = b[n:]
			f := math.Float64frombits(v)
			if num == fieldTemperature {
				req.Temperature = &f
			} else {
				req.Humidity = &f
			}
		case (num == fieldLight || num == fieldMotion) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return req, protowire.ParseError(n)
			}
			b = b[n:]
			if num == fieldLight {
				light := int64(v)
				req.Light = &light
			} else {
				motion := protowire.DecodeBool(v)
				req.Motion = &motion
			}
		case num >= fieldTemperature && num <= fieldMotion:
			return req, errors.Wrapf(errWireType, "field %d", num)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return req, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return req, nil
}

func encodeSensorAck(ok bool) []byte {
	b := protowire.AppendTag(nil, fieldAckOK, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(ok))
}

// writeProto writes an already encoded message with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", protobufContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
