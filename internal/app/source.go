package app

import (
	"fmt"
	"io"
	"log"

	"github.com/ridelink-tech/attitude_engine/internal/config"
	"github.com/ridelink-tech/attitude_engine/internal/imu"
	"github.com/ridelink-tech/attitude_engine/internal/sensors"
)

// newSource builds the configured sample source. The returned closer is
// nil for sources without an underlying device.
func newSource(cfg *config.Config) (imu.Source, io.Closer, error) {
	switch cfg.SampleSource {
	case "serial":
		src, err := sensors.NewSerialSource(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using serial sample source on %s @ %d baud", cfg.SerialPort, cfg.SerialBaud)
		closer, _ := src.(io.Closer)
		return src, closer, nil
	case "mock":
		log.Println("using mock sample source")
		return sensors.NewMockSource(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}
