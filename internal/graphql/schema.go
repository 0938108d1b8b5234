package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/accounts"
	"github.com/vladislavdragonenkov/crm/internal/service/catalog"
	"github.com/vladislavdragonenkov/crm/internal/service/customers"
	"github.com/vladislavdragonenkov/crm/internal/service/orders"
)

// NewSchema собирает исполняемую GraphQL-схему поверх резолвера. Схема
// строится один раз на старте приложения; ошибка здесь означает дефект
// конфигурации типов и фатальна.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	orderStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "OrderStatus",
		Values: graphql.EnumValueConfigMap{
			"PENDING":   &graphql.EnumValueConfig{Value: string(domain.OrderStatusPending)},
			"COMPLETED": &graphql.EnumValueConfig{Value: string(domain.OrderStatusCompleted)},
			"CANCELLED": &graphql.EnumValueConfig{Value: string(domain.OrderStatusCancelled)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: userField(func(u domain.User) interface{} { return u.ID })},
			"name":    &graphql.Field{Type: graphql.String, Resolve: userField(func(u domain.User) interface{} { return u.Name })},
			"surname": &graphql.Field{Type: graphql.String, Resolve: userField(func(u domain.User) interface{} { return u.Surname })},
			"email":   &graphql.Field{Type: graphql.String, Resolve: userField(func(u domain.User) interface{} { return u.Email })},
			"created": &graphql.Field{Type: graphql.DateTime, Resolve: userField(func(u domain.User) interface{} { return u.CreatedAt })},
		},
	})

	tokenType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Token",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: productField(func(p domain.Product) interface{} { return p.ID })},
			"name":      &graphql.Field{Type: graphql.String, Resolve: productField(func(p domain.Product) interface{} { return p.Name })},
			"price":     &graphql.Field{Type: graphql.Float, Resolve: productField(func(p domain.Product) interface{} { return p.Price })},
			"available": &graphql.Field{Type: graphql.Int, Resolve: productField(func(p domain.Product) interface{} { return int(p.Available) })},
			"created":   &graphql.Field{Type: graphql.DateTime, Resolve: productField(func(p domain.Product) interface{} { return p.CreatedAt })},
		},
	})

	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: customerField(func(c domain.Customer) interface{} { return c.ID })},
			"name":    &graphql.Field{Type: graphql.String, Resolve: customerField(func(c domain.Customer) interface{} { return c.Name })},
			"surname": &graphql.Field{Type: graphql.String, Resolve: customerField(func(c domain.Customer) interface{} { return c.Surname })},
			"company": &graphql.Field{Type: graphql.String, Resolve: customerField(func(c domain.Customer) interface{} { return c.Company })},
			"email":   &graphql.Field{Type: graphql.String, Resolve: customerField(func(c domain.Customer) interface{} { return c.Email })},
			"phone":   &graphql.Field{Type: graphql.String, Resolve: customerField(func(c domain.Customer) interface{} { return c.Phone })},
			"seller":  &graphql.Field{Type: graphql.ID, Resolve: customerField(func(c domain.Customer) interface{} { return c.SellerID })},
			"created": &graphql.Field{Type: graphql.DateTime, Resolve: customerField(func(c domain.Customer) interface{} { return c.CreatedAt })},
		},
	})

	lineItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LineItem",
		Fields: graphql.Fields{
			"product": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					item, _ := p.Source.(domain.LineItem)
					return item.ProductID, nil
				},
			},
			"quantity": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					item, _ := p.Source.(domain.LineItem)
					return int(item.Quantity), nil
				},
			},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: orderField(func(o domain.Order) interface{} { return o.ID })},
			"items":   &graphql.Field{Type: graphql.NewList(lineItemType), Resolve: orderField(func(o domain.Order) interface{} { return o.Items })},
			"total":   &graphql.Field{Type: graphql.Float, Resolve: orderField(func(o domain.Order) interface{} { return o.Total })},
			"seller":  &graphql.Field{Type: graphql.ID, Resolve: orderField(func(o domain.Order) interface{} { return o.SellerID })},
			"status":  &graphql.Field{Type: orderStatusEnum, Resolve: orderField(func(o domain.Order) interface{} { return string(o.Status) })},
			"created": &graphql.Field{Type: graphql.DateTime, Resolve: orderField(func(o domain.Order) interface{} { return o.CreatedAt })},
			"customer": &graphql.Field{
				Type: customerType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					order, ok := p.Source.(domain.Order)
					if !ok {
						return nil, nil
					}
					return r.customerLookup.Get(p.Context, order.CustomerID)
				},
			},
		},
	})

	topCustomerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TopCustomer",
		Fields: graphql.Fields{
			"total": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					row, _ := p.Source.(domain.CustomerSales)
					return row.Total, nil
				},
			},
			"customer": &graphql.Field{
				Type: customerType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					row, _ := p.Source.(domain.CustomerSales)
					return row.Customer, nil
				},
			},
		},
	})

	topSellerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TopSeller",
		Fields: graphql.Fields{
			"total": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					row, _ := p.Source.(domain.SellerSales)
					return row.Total, nil
				},
			},
			"seller": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					row, _ := p.Source.(domain.SellerSales)
					return row.Seller, nil
				},
			},
		},
	})

	userInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"surname":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	productInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProductInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"price":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"available": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	customerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"surname": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"company": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	lineItemInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LineItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"product":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"quantity": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	orderInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"customer": &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"items":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(lineItemInput))},
			"total":    &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"status":   &graphql.InputObjectFieldConfig{Type: orderStatusEnum},
		},
	})

	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.accounts.CurrentUser(p.Context, caller.ID)
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.List(p.Context)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.Get(p.Context, stringArg(p, "id"))
				},
			},
			"searchProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.Search(p.Context, stringArg(p, "text"))
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.customers.List(p.Context)
				},
			},
			"myCustomers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.customers.ListMine(p.Context, caller.ID)
				},
			},
			"customer": &graphql.Field{
				Type: customerType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.customers.Get(p.Context, stringArg(p, "id"), caller.ID)
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.orders.List(p.Context)
				},
			},
			"myOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.orders.ListMine(p.Context, caller.ID)
				},
			},
			"ordersByStatus": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderStatusEnum)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					status := domain.OrderStatus(stringArg(p, "status"))
					return r.orders.ListMineByStatus(p.Context, caller.ID, status)
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.orders.Get(p.Context, stringArg(p, "id"), caller.ID)
				},
			},
			"topCustomers": &graphql.Field{
				Type: graphql.NewList(topCustomerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.reports.TopCustomers(p.Context)
				},
			},
			"topSellers": &graphql.Field{
				Type: graphql.NewList(topSellerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.reports.TopSellers(p.Context)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := inputArg(p)
					return r.accounts.Register(p.Context, accounts.RegisterInput{
						Name:     stringField(in, "name"),
						Surname:  stringField(in, "surname"),
						Email:    stringField(in, "email"),
						Password: stringField(in, "password"),
					})
				},
			},
			"login": &graphql.Field{
				Type: tokenType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					token, err := r.accounts.Authenticate(p.Context, stringArg(p, "email"), stringArg(p, "password"))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"token": token}, nil
				},
			},
			"createProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.Create(p.Context, productInputArg(p))
				},
			},
			"updateProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.Update(p.Context, stringArg(p, "id"), productInputArg(p))
				},
			},
			"deleteProduct": &graphql.Field{
				Type: graphql.String,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.catalog.Delete(p.Context, stringArg(p, "id")); err != nil {
						return nil, err
					}
					return "product deleted", nil
				},
			},
			"createCustomer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.customers.Create(p.Context, customerInputArg(p), caller.ID)
				},
			},
			"updateCustomer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.customers.Update(p.Context, stringArg(p, "id"), customerInputArg(p), caller.ID)
				},
			},
			"deleteCustomer": &graphql.Field{
				Type: graphql.String,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					if err := r.customers.Delete(p.Context, stringArg(p, "id"), caller.ID); err != nil {
						return nil, err
					}
					return "customer deleted", nil
				},
			},
			"createOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.orders.PlaceOrder(p.Context, placeOrderInputArg(p), caller.ID)
				},
			},
			"updateOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.orders.UpdateOrder(p.Context, stringArg(p, "id"), updateOrderInputArg(p), caller.ID)
				},
			},
			"deleteOrder": &graphql.Field{
				Type: graphql.String,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := identity(p.Context)
					if err != nil {
						return nil, err
					}
					if err := r.orders.DeleteOrder(p.Context, stringArg(p, "id"), caller.ID); err != nil {
						return nil, err
					}
					return "order deleted", nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// userField/productField/customerField/orderField сокращают типовые резолверы
// полей: приведение Source к доменной сущности и выбор поля.
func userField(pick func(domain.User) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		u, ok := p.Source.(domain.User)
		if !ok {
			return nil, nil
		}
		return pick(u), nil
	}
}

func productField(pick func(domain.Product) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		pr, ok := p.Source.(domain.Product)
		if !ok {
			return nil, nil
		}
		return pick(pr), nil
	}
}

func customerField(pick func(domain.Customer) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		c, ok := p.Source.(domain.Customer)
		if !ok {
			return nil, nil
		}
		return pick(c), nil
	}
}

func orderField(pick func(domain.Order) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		o, ok := p.Source.(domain.Order)
		if !ok {
			return nil, nil
		}
		return pick(o), nil
	}
}

// Декодирование аргументов. graphql-go отдаёт значения как
// map[string]interface{}; обязательность полей гарантируется схемой,
// поэтому здесь только приведение типов с нулевыми значениями по умолчанию.

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func inputArg(p graphql.ResolveParams) map[string]interface{} {
	in, _ := p.Args["input"].(map[string]interface{})
	return in
}

func stringField(in map[string]interface{}, name string) string {
	s, _ := in[name].(string)
	return s
}

func floatField(in map[string]interface{}, name string) (float64, bool) {
	switch v := in[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func intField(in map[string]interface{}, name string) int32 {
	switch v := in[name].(type) {
	case int:
		return int32(v)
	case float64:
		return int32(v)
	}
	return 0
}

func productInputArg(p graphql.ResolveParams) catalog.ProductInput {
	in := inputArg(p)
	price, _ := floatField(in, "price")
	return catalog.ProductInput{
		Name:      stringField(in, "name"),
		Price:     price,
		Available: intField(in, "available"),
	}
}

func customerInputArg(p graphql.ResolveParams) customers.CustomerInput {
	in := inputArg(p)
	return customers.CustomerInput{
		Name:    stringField(in, "name"),
		Surname: stringField(in, "surname"),
		Company: stringField(in, "company"),
		Email:   stringField(in, "email"),
		Phone:   stringField(in, "phone"),
	}
}

func lineItemsField(in map[string]interface{}) []domain.LineItem {
	raw, ok := in["items"].([]interface{})
	if !ok {
		return nil
	}
	items := make([]domain.LineItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		items = append(items, domain.LineItem{
			ProductID: stringField(m, "product"),
			Quantity:  intField(m, "quantity"),
		})
	}
	return items
}

func placeOrderInputArg(p graphql.ResolveParams) orders.PlaceOrderInput {
	in := inputArg(p)
	total, _ := floatField(in, "total")
	return orders.PlaceOrderInput{
		CustomerID: stringField(in, "customer"),
		Items:      lineItemsField(in),
		Total:      total,
		Status:     domain.OrderStatus(stringField(in, "status")),
	}
}

func updateOrderInputArg(p graphql.ResolveParams) orders.UpdateOrderInput {
	in := inputArg(p)
	out := orders.UpdateOrderInput{
		CustomerID: stringField(in, "customer"),
		Items:      lineItemsField(in),
	}
	if total, ok := floatField(in, "total"); ok {
		out.Total = &total
	}
	if s, ok := in["status"].(string); ok {
		status := domain.OrderStatus(s)
		out.Status = &status
	}
	return out
}
