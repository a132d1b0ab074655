// Package workspace models a switchyard workspace: a directory whose
// immediate children are the managed git repositories, with a
// switchyard.yaml configuration file at the root.
//
// # Workspace Structure
//
// A workspace follows this layout:
//
//	workspace-root/
//	├── switchyard.yaml         # Workspace configuration
//	├── billing-api/            # An "app" repository
//	│   └── .git/
//	└── billing-db/             # The "db-alembic" repository
//	    ├── .git/
//	    └── migrations/versions # Alembic revision scripts
//
// # Usage Example
//
//	ws, err := workspace.Open(".")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := ws.Preflight(); err != nil {
//		log.Fatal(err)
//	}
//
//	repo, err := ws.Repository("db")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(ws.RepoPath(repo.Name))
package workspace
