package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

func TestDirectoryCacheKeys(t *testing.T) {
	assert.Equal(t, "directory:courses", CoursesKey())
	assert.Equal(t, "directory:years:B.Tech", YearsKey("B.Tech"))
	assert.Equal(t, "directory:sections:B.Tech/1st Year", SectionsKey("B.Tech", "1st Year"))
}

func TestDirectoryCacheNilClientIsNoop(t *testing.T) {
	c := NewDirectoryCache(nil, zap.NewNop())
	ctx := context.Background()

	_, err := c.Listing(ctx, CoursesKey())
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)

	assert.NoError(t, c.StoreListing(ctx, CoursesKey(), []string{"B.Tech"}, 0))
	assert.NoError(t, c.Invalidate(ctx))
	assert.NoError(t, c.Close())
}
