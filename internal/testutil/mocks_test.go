package testutil_test

import (
	"github.com/printworks/jobmeta/internal/testutil"
	"github.com/printworks/jobmeta/pkg/metadata"
)

// Compile-time checks that the mocks satisfy the interfaces they stand in
// for. Behavioral verification happens in the tests of the components that
// consume them.
var _ metadata.CacheManager = (*testutil.MockCacheManager)(nil)
