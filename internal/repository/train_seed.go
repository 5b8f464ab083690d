package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// trainSeedFile is the layout of the YAML seed file:
//
//	trains:
//	  - trainId: "12952"
//	    stations: [delhi, jaipur, ajmer]
//	    rows: 10
//	    columns: 4
//	  - trainId: "22436"
//	    stations: [varanasi, prayagraj, kanpur, delhi]
//	    seats: [[0, 0, 0], [0, 0]]
//
// An explicit seats grid wins over rows/columns.
type trainSeedFile struct {
	Trains []trainSeed `yaml:"trains"`
}

type trainSeed struct {
	TrainID  string        `yaml:"trainId"`
	Stations []string      `yaml:"stations"`
	Rows     int           `yaml:"rows"`
	Columns  int           `yaml:"columns"`
	Seats    model.SeatMap `yaml:"seats"`
}

// LoadTrainSeed reads a YAML seed file and returns the trains it declares.
func LoadTrainSeed(path string) ([]model.Train, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseTrainSeed(data)
}

// ParseTrainSeed decodes seed YAML. Every train is validated.
func ParseTrainSeed(data []byte) ([]model.Train, error) {
	var f trainSeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	out := make([]model.Train, 0, len(f.Trains))
	for i, s := range f.Trains {
		seats := s.Seats
		if len(seats) == 0 {
			if s.Rows <= 0 || s.Columns <= 0 {
				return nil, fmt.Errorf("%w: seed entry %d (%s) needs seats or rows/columns", ErrInvalidTrain, i, s.TrainID)
			}
			seats = model.NewSeatMap(s.Rows, s.Columns)
		}
		t := model.Train{TrainID: s.TrainID, Stations: s.Stations, Seats: seats}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: seed entry %d (%s): %v", ErrInvalidTrain, i, s.TrainID, err)
		}
		out = append(out, t.Normalized())
	}
	return out, nil
}
