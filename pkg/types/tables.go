package types

// CollectionName names a managed collection. Plural is the wire and storage
// name; Singular is used in messages about a single entity.
type CollectionName struct {
	Singular string
	Plural   string
}

// String returns the plural name.
func (n CollectionName) String() string { return n.Plural }

// Standard collections managed by the building app.
var (
	ResidentsCollection     = CollectionName{Singular: "resident", Plural: "residents"}
	PackagesCollection      = CollectionName{Singular: "package", Plural: "packages"}
	NotificationsCollection = CollectionName{Singular: "notification", Plural: "notifications"}
	PostsCollection         = CollectionName{Singular: "post", Plural: "posts"}
)

// StandardCollections lists all standard collections for enumeration.
var StandardCollections = []CollectionName{
	ResidentsCollection,
	PackagesCollection,
	NotificationsCollection,
	PostsCollection,
}

// LookupCollection returns the standard collection with the given plural or
// singular name.
func LookupCollection(name string) (CollectionName, bool) {
	for _, c := range StandardCollections {
		if c.Plural == name || c.Singular == name {
			return c, true
		}
	}
	return CollectionName{}, false
}
