package builtin

import "warden/internal/tool"

// RegisterAll loads every builtin into the catalog in a fixed order. The
// catalog is populated once at process start and treated as immutable
// afterward.
func RegisterAll(catalog *tool.Catalog, cfg Config) error {
	executors := []tool.Executor{
		// File operations
		NewFileRead(cfg),
		NewFileWrite(cfg),
		NewFileEdit(cfg),
		NewFileDelete(cfg),
		NewFileMove(cfg),
		NewFileCopy(cfg),
		NewDirCreate(cfg),
		NewListFiles(cfg),

		// Search
		NewFind(cfg),
		NewGrep(cfg),

		// Git (read-only)
		NewGitStatus(cfg),
		NewGitDiff(cfg),
		NewGitLog(cfg),

		// Shell
		NewBash(cfg),
	}

	for _, executor := range executors {
		if err := catalog.Register(executor); err != nil {
			return err
		}
	}
	return nil
}
