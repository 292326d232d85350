package dal

import (
	"context"
	"math/big"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

// taskRecord is the gorm model backing TaskStore. Task's opaque byte
// fields (RequestID, Seed, Params, RelayedGroupPubKey) are stored
// as-is; Requester is stored as its 0x-prefixed hex string, and
// MaxGasPrice as its decimal string since
// *big.Int has no native SQL mapping.
type taskRecord struct {
	ChainID uint64 `gorm:"primary_key;auto_increment:false"`
	// RequestID is part of the composite primary key alongside ChainID:
	// request ids are only unique within a single chain's task space.
	RequestID string `gorm:"primary_key"`

	SubscriptionID     uint64
	GroupIndex         int
	Type               int
	Params             []byte
	Requester          string
	Seed               []byte
	ConfirmationDepth  uint32
	CallbackGasLimit   uint64
	MaxGasPrice        string
	AssignmentHeight   uint64
	State              int
	RelayedChainID     uint64
	RelayedGroupPubKey []byte
	RelayedGroupEpoch  int
}

func (taskRecord) TableName() string { return "tasks" }

func recordFromTask(chainID uint64, task types.Task) taskRecord {
	maxGasPrice := "0"
	if task.MaxGasPrice != nil {
		maxGasPrice = task.MaxGasPrice.String()
	}
	return taskRecord{
		ChainID:            chainID,
		RequestID:          string(task.RequestID),
		SubscriptionID:     task.SubscriptionID,
		GroupIndex:         task.GroupIndex,
		Type:               int(task.Type),
		Params:             task.Params,
		Requester:          task.Requester.String(),
		Seed:               task.Seed[:],
		ConfirmationDepth:  task.ConfirmationDepth,
		CallbackGasLimit:   task.CallbackGasLimit,
		MaxGasPrice:        maxGasPrice,
		AssignmentHeight:   task.AssignmentHeight,
		State:              int(task.State),
		RelayedChainID:     task.RelayedChainID,
		RelayedGroupPubKey: task.RelayedGroupPubKey,
		RelayedGroupEpoch:  task.RelayedGroupEpoch,
	}
}

func (r taskRecord) toTask() (types.Task, error) {
	requester, err := types.HexToAddress(r.Requester)
	if err != nil {
		return types.Task{}, err
	}
	maxGasPrice, ok := new(big.Int).SetString(r.MaxGasPrice, 10)
	if !ok {
		return types.Task{}, errs.New(errs.Serialization, "dal.taskRecord.toTask", nil)
	}
	var seed [32]byte
	copy(seed[:], r.Seed)

	return types.Task{
		RequestID:          types.NewRequestID([]byte(r.RequestID)),
		SubscriptionID:     r.SubscriptionID,
		GroupIndex:         r.GroupIndex,
		Type:               types.TaskType(r.Type),
		Params:             r.Params,
		Requester:          requester,
		Seed:               seed,
		ConfirmationDepth:  r.ConfirmationDepth,
		CallbackGasLimit:   r.CallbackGasLimit,
		MaxGasPrice:        maxGasPrice,
		AssignmentHeight:   r.AssignmentHeight,
		State:              types.TaskState(r.State),
		RelayedChainID:     r.RelayedChainID,
		RelayedGroupPubKey: r.RelayedGroupPubKey,
		RelayedGroupEpoch:  r.RelayedGroupEpoch,
	}, nil
}

// SQLiteStore is the gorm/mattn-go-sqlite3-backed TaskStore.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if absent) the SQLite database at
// path and ensures the tasks table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, errs.New(errs.DataAccess, "dal.NewSQLiteStore", err)
	}
	if err := db.AutoMigrate(&taskRecord{}).Error; err != nil {
		db.Close()
		return nil, errs.New(errs.DataAccess, "dal.NewSQLiteStore", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTask implements TaskStore.
func (s *SQLiteStore) SaveTask(_ context.Context, chainID uint64, task types.Task) error {
	record := recordFromTask(chainID, task)
	err := s.db.Where(taskRecord{ChainID: chainID, RequestID: record.RequestID}).
		Assign(record).
		FirstOrCreate(&taskRecord{}).Error
	if err != nil {
		return errs.New(errs.DataAccess, "dal.SQLiteStore.SaveTask", err)
	}
	return nil
}

// MarkClaimed implements TaskStore.
func (s *SQLiteStore) MarkClaimed(_ context.Context, chainID uint64, id types.RequestID) error {
	err := s.db.Model(&taskRecord{}).
		Where("chain_id = ? AND request_id = ?", chainID, string(id)).
		Update("state", int(types.TaskClaimed)).Error
	if err != nil {
		return errs.New(errs.DataAccess, "dal.SQLiteStore.MarkClaimed", err)
	}
	return nil
}

// Tasks implements TaskStore.
func (s *SQLiteStore) Tasks(_ context.Context, chainID uint64) ([]types.Task, error) {
	var records []taskRecord
	if err := s.db.Where("chain_id = ?", chainID).Find(&records).Error; err != nil {
		return nil, errs.New(errs.DataAccess, "dal.SQLiteStore.Tasks", err)
	}
	tasks := make([]types.Task, 0, len(records))
	for _, r := range records {
		task, err := r.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
