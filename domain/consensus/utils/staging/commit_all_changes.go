package staging

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/infrastructure/logger"
)

// CommitAllChanges creates a transaction in `databaseContext`, and commits all changes in `stagingArea` through it.
func CommitAllChanges(databaseContext model.DBManager, stagingArea *model.StagingArea) error {
	onEnd := logger.LogAndMeasureExecutionTime(utilLog, "commitAllChanges")
	defer onEnd()

	dbTx, err := databaseContext.Begin()
	if err != nil {
		return err
	}

	err = stagingArea.Commit(dbTx)
	if err != nil {
		rollbackErr := dbTx.RollbackUnlessClosed()
		if rollbackErr != nil {
			utilLog.Errorf("Failed to roll back after a failed commit: %+v", rollbackErr)
		}
		return err
	}

	return dbTx.Commit()
}
