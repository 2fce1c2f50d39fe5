package repository

// Option applies a configuration option to the Repo.
type Option func(*Repo)

// WithPageSize sets the FetchAll page size.
func WithPageSize(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.pageSize = n
		}
	}
}
