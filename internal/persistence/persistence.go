package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loislo/fan-control/internal/calibrate"
	"github.com/loislo/fan-control/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketCalibration = "calibration"
)

type Persistence interface {
	Init() error

	LoadCalibrationResults(channelId string) ([]calibrate.Result, error)
	SaveCalibrationResults(channelId string, results []calibrate.Result) (err error)
	DeleteCalibrationResults(channelId string) (err error)

	LoadAllCalibrationResults() (map[string][]calibrate.Result, error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveCalibrationResults saves the test results of the given channel
func (p persistence) SaveCalibrationResults(channelId string, results []calibrate.Result) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketCalibration))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		err = b.Put([]byte(channelId), data)
		return err
	})
}

// LoadCalibrationResults loads the stored test results of the given
// channel, os.ErrNotExist if the channel was never calibrated
func (p persistence) LoadCalibrationResults(channelId string) ([]calibrate.Result, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var results []calibrate.Result
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketCalibration))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(channelId))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &results)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved calibration data for %s: %v", channelId, err)
			err := b.Delete([]byte(channelId))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", channelId, err)
			}
			return nil
		}

		return err
	})

	return results, err
}

func (p persistence) DeleteCalibrationResults(channelId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketCalibration))
		if b == nil {
			// no calibration bucket yet
			return nil
		}
		v := b.Get([]byte(channelId))
		if v == nil {
			// no data for given key
			return nil
		}

		return b.Delete([]byte(channelId))
	})
}

// LoadAllCalibrationResults loads the stored results of every channel
func (p persistence) LoadAllCalibrationResults() (map[string][]calibrate.Result, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	resultMap := map[string][]calibrate.Result{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketCalibration))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var results []calibrate.Result
			if err := json.Unmarshal(v, &results); err != nil {
				ui.Warning("Skipping corrupt calibration data for %s: %v", string(k), err)
				return nil
			}
			resultMap[string(k)] = results
			return nil
		})
	})

	return resultMap, err
}
