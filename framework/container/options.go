package container

import (
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/reflector"
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. Registration and resolution are logged at
// debug level; the default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Container) { c.SetLogger(l) }
}

// WithCatalog shares a catalog of constructible types between containers.
func WithCatalog(cat *reflector.Catalog) Option {
	return func(c *Container) {
		if cat != nil {
			c.catalog = cat
		}
	}
}
