package querycache

// Key identifies a logical query: a whole collection, or one entity within
// it. The canonical key space is products, product/<id>, orders, order/<id>.
type Key struct {
	Collection string
	ID         string
}

func ProductsKey() Key {
	return Key{Collection: "products"}
}

func ProductKey(id string) Key {
	return Key{Collection: "product", ID: id}
}

func OrdersKey() Key {
	return Key{Collection: "orders"}
}

func OrderKey(id string) Key {
	return Key{Collection: "order", ID: id}
}

func (k Key) String() string {
	if k.ID == "" {
		return k.Collection
	}
	return k.Collection + "/" + k.ID
}
