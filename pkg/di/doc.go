// Package di wires the storefront data layer.
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	container, err := di.NewContainer(cfg)
//	if err != nil {
//		return err
//	}
//	defer container.Close()
//
//	err = container.Store().FetchProducts(ctx, container.ProductQuery())
package di
