package provision

// ServiceResult es el resultado de provisionar (o deprovisionar) UN servicio.
// Error viaja como string porque el resultado se serializa hacia el operador.
type ServiceResult struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error,omitempty"`
	DatabaseName       string   `json:"databaseName,omitempty"`
	CollectionsCreated []string `json:"collectionsCreated,omitempty"`
}

// Result es el resultado agregado del fan-out. Efímero: se retorna al caller
// y no se persiste; es el único registro de un partial failure, el caller
// decide si reintenta o alerta al operador.
type Result struct {
	OverallSuccess bool                     `json:"overallSuccess"`
	PerService     map[string]ServiceResult `json:"perService"`
}

// DeprovisionResult es el resultado del drop fan-out más el delete del
// registro central. RegistryDeleted es independiente de los drops: el
// registro se borra siempre, haya o no clusters caídos.
type DeprovisionResult struct {
	OverallSuccess  bool                     `json:"overallSuccess"`
	RegistryDeleted bool                     `json:"registryDeleted"`
	PerService      map[string]ServiceResult `json:"perService"`
}
